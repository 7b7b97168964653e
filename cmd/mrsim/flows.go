package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/experiment"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func generateFlowCommand() *cobra.Command {
	var (
		out        string
		nx, ny, nt int
		xr, yr, tr []float64
	)
	cmd := &cobra.Command{
		Use:   "generate-flow [flow]",
		Short: "sample an analytic flow onto a grid file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(xr) != 2 || len(yr) != 2 || len(tr) != 2 {
				return fmt.Errorf("ranges take exactly two values")
			}
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			f, err := experiment.NewRegistry().GetFlow(cfg.Flow, cfg.FlowOptions)
			if err != nil {
				return err
			}

			xs := floats.Span(make([]float64, nx), xr[0], xr[1])
			ys := floats.Span(make([]float64, ny), yr[0], yr[1])
			ts := floats.Span(make([]float64, nt), tr[0], tr[1])
			g, err := flow.Generate(f, xs, ys, ts)
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Flow + ".gob"
			}
			if err := flow.SaveGrid(out, g); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d x %d x %d)\n", out, nx, ny, nt)
			fmt.Printf("run it with: mrsim run %s%s\n", experiment.GridPrefix, out)
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "grid file (default <flow>.gob)")
	cmd.Flags().IntVar(&nx, "nx", 40, "x samples")
	cmd.Flags().IntVar(&ny, "ny", 40, "y samples")
	cmd.Flags().IntVar(&nt, "nt", 20, "t samples")
	cmd.Flags().Float64SliceVar(&xr, "xrange", []float64{-2, 2}, "x range")
	cmd.Flags().Float64SliceVar(&yr, "yrange", []float64{-2, 2}, "y range")
	cmd.Flags().Float64SliceVar(&tr, "trange", []float64{0, 2}, "t range")
	return cmd
}

func flowInfoCommand() *cobra.Command {
	var frame int
	cmd := &cobra.Command{
		Use:   "flow-info [grid-file]",
		Short: "describe a grid file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := flow.LoadGrid(args[0])
			if err != nil {
				return err
			}
			info := g.Info()
			fmt.Printf("file:      %s\n", args[0])
			fmt.Printf("shape:     %d x %d x %d\n", info.Shape[0], info.Shape[1], info.Shape[2])
			fmt.Printf("x:         [%g, %g]\n", info.XRange[0], info.XRange[1])
			fmt.Printf("y:         [%g, %g]\n", info.YRange[0], info.YRange[1])
			fmt.Printf("t:         [%g, %g]\n", info.TRange[0], info.TRange[1])
			fmt.Printf("fields:    %s\n", strings.Join(info.Keys, ", "))
			fmt.Printf("max speed: %.6g\n", info.MaxSpeed)

			if !cmd.Flags().Changed("frame") {
				return nil
			}
			f, err := g.Snapshot(frame)
			if err != nil {
				return err
			}
			var speeds []float64
			for i := range f.U {
				for j := range f.U[i] {
					speeds = append(speeds, math.Hypot(f.U[i][j], f.V[i][j]))
				}
			}
			mean, std := stat.MeanStdDev(speeds, nil)
			fmt.Printf("\nframe %d at t=%g\n", f.Index, f.T)
			fmt.Printf("speed:     mean %.6g, stddev %.6g, max %.6g\n", mean, std, floats.Max(speeds))
			return nil
		},
	}
	cmd.Flags().IntVar(&frame, "frame", 0, "summarise the velocity at this time index")
	return cmd
}

func presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [flow]",
		Short: "list preset configurations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flows := config.PresetFlows()
			if len(args) == 1 {
				flows = args
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FLOW\tPRESET\tDT\tSTEPS\tPOSITION\tSLIP")
			for _, fl := range flows {
				names := config.ListPresets(fl)
				if len(names) == 0 {
					return fmt.Errorf("no presets for flow %q", fl)
				}
				for _, name := range names {
					p := config.GetPreset(fl, name)
					fmt.Fprintf(w, "%s\t%s\t%g\t%d\t(%g, %g)\t(%g, %g)\n",
						fl, name,
						p.Parameters.Timestep, p.Parameters.Steps,
						p.Position.X, p.Position.Y,
						p.Slip.X, p.Slip.Y,
					)
				}
			}
			return w.Flush()
		},
	}
}
