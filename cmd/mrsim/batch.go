package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/mrsim/internal/automation"
	"github.com/san-kum/mrsim/internal/experiment"
	"github.com/san-kum/mrsim/internal/metrics"
	"github.com/san-kum/mrsim/internal/optim"
	"github.com/spf13/cobra"
)

func scenarioCommand() *cobra.Command {
	var noSave bool
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
			if sc.Description != "" {
				fmt.Println(sc.Description)
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			if noSave {
				st = nil
			}
			results, runErr := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), st)

			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tID\tFLOW\tSTEPS\tSTATE\tPATH\tMAX SLIP")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.4f\t%.4f\n",
					r.Name,
					orDash(r.RunID),
					r.Config.Flow,
					r.Result.Trajectory.Steps(),
					r.Result.Phase,
					r.Result.Metrics["path_length"],
					r.Result.Metrics["max_slip"],
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if n := automation.Failures(results); n > 0 {
				fmt.Printf("%d of %d steps failed\n", n, len(results))
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sweepCommand() *cobra.Command {
	var (
		rs, ss   []float64
		orders   []int
		metric   string
		maximize bool
		top      int
		nWorkers int
	)
	cmd := &cobra.Command{
		Use:   "sweep [flow]",
		Short: "search R, S and order for the best value of a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := metrics.ByName(metric); !ok {
				return fmt.Errorf("unknown metric %q (available: %s)", metric, strings.Join(metrics.Names(), ", "))
			}
			base, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}

			search := optim.NewSweep(rs, ss, orders)
			search.Maximize = maximize
			search.Workers = nWorkers
			names := search.Names()
			if len(names) == 0 {
				return fmt.Errorf("nothing to sweep: give --rs, --ss or --orders")
			}
			fmt.Printf("sweeping %s over %d points of %s flow...\n",
				strings.Join(names, ", "), len(search.Points()), base.Flow)

			points, best, err := search.Search(cmd.Context(), optim.ConfigBuilder(base, experiment.NewRegistry()), metric)
			if err != nil && best.Params == nil {
				return err
			}

			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
			for i, p := range search.Sorted(points) {
				if top > 0 && i >= top {
					break
				}
				for _, name := range names {
					fmt.Fprintf(w, "%g\t", p.Params[name])
				}
				fmt.Fprintf(w, "%.6f\n", p.Value)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			failed := 0
			for _, p := range points {
				if p.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				fmt.Printf("%d points failed\n", failed)
			}
			fmt.Print("\nbest:")
			for _, name := range names {
				fmt.Printf(" %s=%g", name, best.Params[name])
			}
			fmt.Printf(" %s=%.6f\n", metric, best.Value)
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().Float64SliceVar(&rs, "rs", nil, "density parameter values")
	cmd.Flags().Float64SliceVar(&ss, "ss", nil, "relaxation parameter values")
	cmd.Flags().IntSliceVar(&orders, "orders", nil, "quadrature orders")
	cmd.Flags().StringVar(&metric, "metric", "path_length", "metric to optimise")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")
	cmd.Flags().IntVar(&top, "top", 10, "rows to show (0: all)")
	cmd.Flags().IntVar(&nWorkers, "workers", 0, "concurrent runs (0: GOMAXPROCS)")
	return cmd
}
