// Package store serialises a run result into a single JSON document.
package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/sim"
	"github.com/san-kum/mrsim/internal/storage"
)

type ExportData struct {
	Flow      string             `json:"flow"`
	Order     int                `json:"order"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	R         float64            `json:"density_parameter"`
	S         float64            `json:"relaxation_parameter"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	Positions [][2]float64       `json:"positions"`
	Slips     [][2]float64       `json:"slips"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewExportData flattens a result into columns.
func NewExportData(flow string, order int, params config.Dimensionless, result *sim.Result) ExportData {
	data := ExportData{
		Flow:     flow,
		Order:    order,
		Dt:       params.Timestep(),
		Duration: params.Duration(),
		R:        params.R(),
		S:        params.S(),
		Status:   result.Phase.String(),
		Metrics:  result.Metrics,
	}
	if result.Err != nil {
		data.Error = result.Err.Error()
	}
	data.fill(result.Trajectory)
	return data
}

// FromRun flattens a stored run.
func FromRun(meta *storage.RunMetadata, traj *dynamo.Trajectory) ExportData {
	data := ExportData{
		Flow:     meta.Flow,
		Order:    meta.Order,
		Dt:       meta.Dt,
		Duration: meta.Dt * float64(meta.Steps),
		R:        meta.R,
		S:        meta.S,
		Status:   meta.Status,
		Error:    meta.Error,
		Metrics:  meta.Metrics,
	}
	data.fill(traj)
	return data
}

func (d *ExportData) fill(traj *dynamo.Trajectory) {
	d.Steps = traj.Steps()
	d.Times = traj.Times()
	d.Positions = make([][2]float64, traj.Len())
	d.Slips = make([][2]float64, traj.Len())
	for i := 0; i < traj.Len(); i++ {
		st := traj.At(i)
		d.Positions[i] = [2]float64{st.Position.X, st.Position.Y}
		d.Slips[i] = [2]float64{st.Slip.X, st.Slip.Y}
	}
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ExportJSONStdout(data ExportData) error {
	return WriteJSON(os.Stdout, data)
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
