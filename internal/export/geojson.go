// Package export renders trajectories for other tools: GeoJSON for GIS
// viewers and SVG for documents.
package export

import (
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/san-kum/mrsim/internal/dynamo"
)

// GeoJSON builds a feature collection from trajectories. Each trajectory
// becomes a LineString carrying props and its particle index, plus a Point
// for every every-th state carrying time and slip. every <= 0 emits no
// points.
func GeoJSON(trajs []*dynamo.Trajectory, props map[string]any, every int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for pid, traj := range trajs {
		line := make([][]float64, traj.Len())
		for i := range line {
			p := traj.At(i).Position
			line[i] = []float64{p.X, p.Y}
		}
		f := geojson.NewLineStringFeature(line)
		for k, v := range props {
			f.SetProperty(k, v)
		}
		f.SetProperty("pid", pid)
		f.SetProperty("steps", traj.Steps())
		fc.AddFeature(f)

		if every <= 0 {
			continue
		}
		for i := 0; i < traj.Len(); i += every {
			st := traj.At(i)
			pt := geojson.NewPointFeature([]float64{st.Position.X, st.Position.Y})
			pt.SetProperty("pid", pid)
			pt.SetProperty("time", st.Time)
			pt.SetProperty("wx", st.Slip.X)
			pt.SetProperty("wy", st.Slip.Y)
			fc.AddFeature(pt)
		}
	}
	return fc
}

// SaveGeoJSON writes the feature collection of trajs to path.
func SaveGeoJSON(path string, trajs []*dynamo.Trajectory, props map[string]any, every int) error {
	raw, err := GeoJSON(trajs, props, every).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	return os.WriteFile(path, append(raw, '\n'), 0644)
}
