package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mrsim/internal/analysis"
	"github.com/san-kum/mrsim/internal/history"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

func coefficientsCommand() *cobra.Command {
	var ord int
	cmd := &cobra.Command{
		Use:   "coefficients [n]",
		Short: "print the history quadrature weights for n steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q: %w", args[0], err)
			}
			w, err := history.Coefficients(n, ord)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "J\tWEIGHT\t")
			for j, v := range w {
				fmt.Fprintf(tw, "%d\t%.12f\t\n", j, v)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			// Integrating a constant over n unit steps gives 2·sqrt(n).
			fmt.Printf("\nsum %.12f, 2·sqrt(n) %.12f\n", floats.Sum(w), 2*math.Sqrt(float64(n)))
			return nil
		},
	}
	cmd.Flags().IntVar(&ord, "order", 3, "quadrature order (1, 2 or 3)")
	return cmd
}

func convergenceCommand() *cobra.Command {
	var (
		orders []int
		counts []int
		span   float64
	)
	cmd := &cobra.Command{
		Use:   "convergence",
		Short: "measure the history quadrature error against a closed form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := analysis.Convergence(orders, counts, span)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tPOINTS\tH\tMAX ERROR\tRATE")
			series := make(map[int][]float64)
			for _, row := range rows {
				rate := "-"
				if !math.IsNaN(row.Rate) {
					rate = fmt.Sprintf("%.2f", row.Rate)
				}
				fmt.Fprintf(w, "%d\t%d\t%.4g\t%.3e\t%s\n", row.Order, row.Points, row.Step, row.MaxError, rate)
				series[row.Order] = append(series[row.Order], math.Log10(row.MaxError))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(counts) < 2 {
				return nil
			}
			plots := make([][]float64, 0, len(orders))
			for _, o := range orders {
				plots = append(plots, series[o])
			}
			fmt.Println()
			fmt.Println(asciigraph.PlotMany(plots,
				asciigraph.Height(12),
				asciigraph.Width(60),
				asciigraph.Caption("log10 max error per grid, one line per order (1, 2, 3)"),
			))
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&orders, "orders", []int{1, 2, 3}, "quadrature orders")
	cmd.Flags().IntSliceVar(&counts, "points", []int{11, 21, 41, 81, 161}, "grid point counts")
	cmd.Flags().Float64Var(&span, "span", 1, "integration interval [0, span]")
	return cmd
}
