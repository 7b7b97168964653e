package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mrsim/internal/analysis"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/export"
	"github.com/san-kum/mrsim/internal/storage"
	"github.com/san-kum/mrsim/internal/store"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFLOW\tTIME\tORDER\tDT\tSTEPS\tR\tS\tSTATUS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%d\t%g\t%g\t%s\n",
					run.ID,
					run.Flow,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Order,
					run.Dt,
					run.Steps,
					run.R,
					run.S,
					run.Status,
				)
			}
			return w.Flush()
		},
	}
	return cmd
}

func deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run-id]",
		Short: "remove a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.New(dataDir).Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func plotCommand() *cobra.Command {
	var (
		columns       []string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot trajectory columns of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, traj, err := loadRun(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("run %s: %s flow, R=%g S=%g, %s\n\n", meta.ID, meta.Flow, meta.R, meta.S, meta.Status)

			for _, name := range columns {
				data, ok := traj.Column(name)
				if !ok {
					return fmt.Errorf("unknown column %q (want x, y, wx, wy or slip)", name)
				}
				if len(data) < 2 {
					continue
				}
				graph := asciigraph.Plot(data,
					asciigraph.Height(height),
					asciigraph.Width(width),
					asciigraph.Caption(fmt.Sprintf("%s over t in [0, %.3g]", name, traj.Last().Time)),
				)
				fmt.Println(graph)
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", []string{"x", "y", "slip"}, "columns to plot")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
	return cmd
}

func exportCommand() *cobra.Command {
	var (
		format, output string
		every          int
	)
	cmd := &cobra.Command{
		Use:   "export [run-id...]",
		Short: "export stored runs as json, geojson, svg or csv",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args, format, output, every)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, geojson, svg, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout, or <id>.svg for svg)")
	cmd.Flags().IntVar(&every, "every", 0, "geojson: emit a point feature every n states (0: none)")
	return cmd
}

func runExport(args []string, format, output string, every int) error {
	metas := make([]*storage.RunMetadata, len(args))
	trajs := make([]*dynamo.Trajectory, len(args))
	for i, id := range args {
		meta, traj, err := loadRun(id)
		if err != nil {
			return err
		}
		metas[i], trajs[i] = meta, traj
	}

	switch format {
	case "json":
		if len(args) != 1 {
			return fmt.Errorf("json export takes exactly one run")
		}
		data := store.FromRun(metas[0], trajs[0])
		if output == "" {
			return store.ExportJSONStdout(data)
		}
		return store.ExportJSON(output, data)

	case "geojson":
		props := map[string]any{
			"flow":  metas[0].Flow,
			"order": metas[0].Order,
			"R":     metas[0].R,
			"S":     metas[0].S,
		}
		if output == "" {
			raw, err := export.GeoJSON(trajs, props, every).MarshalJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Println(string(raw))
			return err
		}
		return export.SaveGeoJSON(output, trajs, props, every)

	case "svg":
		paths := make([][]r2.Vec, len(trajs))
		for i, traj := range trajs {
			paths[i] = traj.Positions()
		}
		svg := export.TrajectoryToSVG(paths, 800, 800, "#00a8cc", "#ff6f59", "#7bd389", "#f4d35e")
		path := output
		if path == "" {
			path = args[0] + ".svg"
		}
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil

	case "csv":
		if len(args) != 1 {
			return fmt.Errorf("csv export takes exactly one run")
		}
		raw, err := os.ReadFile(storage.New(dataDir).TrajectoryPath(args[0]))
		if err != nil {
			return err
		}
		if output == "" {
			_, err = os.Stdout.Write(raw)
			return err
		}
		return os.WriteFile(output, raw, 0644)
	}
	return fmt.Errorf("unknown format %q", format)
}

func analyzeCommand() *cobra.Command {
	var (
		column        string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "analyze [run-id]",
		Short: "power spectrum of a trajectory column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, traj, err := loadRun(args[0])
			if err != nil {
				return err
			}
			data, ok := traj.Column(column)
			if !ok {
				return fmt.Errorf("unknown column %q", column)
			}
			spectrum := analysis.PowerSpectrum(data)
			if len(spectrum) < 2 {
				return fmt.Errorf("run %s is too short for a spectrum", meta.ID)
			}

			// The DC bin dwarfs everything else for drifting particles.
			graph := asciigraph.Plot(spectrum[1:],
				asciigraph.Height(height),
				asciigraph.Width(width),
				asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", column)),
			)
			fmt.Println(graph)
			fmt.Println()

			freq := analysis.DominantFrequency(data, meta.Dt)
			fmt.Printf("dominant frequency: %.4f (period %.4f)\n", freq, 1/freq)
			if meta.Flow == "blink" && meta.FlowOptions.Period > 0 {
				fmt.Printf("flow frequency:     %.4f\n", 1/meta.FlowOptions.Period)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "column", "x", "column to analyse")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 15, "plot height")
	return cmd
}

func phaseCommand() *cobra.Command {
	var (
		xCol, yCol    string
		period        float64
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "phase [run-id]",
		Short: "phase portrait or stroboscopic section of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, traj, err := loadRun(args[0])
			if err != nil {
				return err
			}

			var p *analysis.Portrait
			title := fmt.Sprintf("%s vs %s", yCol, xCol)
			if cmd.Flags().Changed("period") {
				p, err = analysis.Stroboscopic(traj, period)
				title = fmt.Sprintf("position every %g time units", period)
			} else {
				p, err = analysis.NewPortrait(traj, xCol, yCol)
			}
			if err != nil {
				return err
			}

			fmt.Printf("run %s (%s): %s, %d points\n", meta.ID, meta.Flow, title, len(p.Points))
			fmt.Println(strings.TrimRight(p.ASCII(width, height), "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&xCol, "x", "x", "horizontal column")
	cmd.Flags().StringVar(&yCol, "y", "y", "vertical column")
	cmd.Flags().Float64Var(&period, "period", 0, "sample once per period instead of plotting every state")
	cmd.Flags().IntVar(&width, "width", 60, "portrait width")
	cmd.Flags().IntVar(&height, "height", 20, "portrait height")
	return cmd
}
