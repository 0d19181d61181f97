package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-veccheck/internal/report"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var (
		absTol float64
		relTol float64
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "compare <reference> <candidate>",
		Short: "Diff two saved reports within tolerance",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ref, err := parseReportFile(args[0])
			if err != nil {
				return err
			}
			got, err := parseReportFile(args[1])
			if err != nil {
				return err
			}

			tol := report.Tolerance{Abs: absTol, Rel: relTol}
			findings, passed := report.Compare(ref, got, tol)

			for _, f := range findings {
				if f.Status == report.StatusOK {
					if !quiet {
						fmt.Fprintf(os.Stdout, "OK: %s\n", f.Key)
					}
					continue
				}
				fmt.Fprintf(os.Stdout, "%s: %s %s\n", f.Status, f.Key, f.Detail)
			}

			if !passed {
				return errors.New("reports differ beyond tolerance")
			}

			fmt.Fprintln(os.Stdout, "SUCCESS: all values match within tolerance")
			return nil
		},
	}

	cmd.Flags().Float64Var(&absTol, "abs-tol", report.DefaultTolerance.Abs, "Absolute tolerance for floating-point lines")
	cmd.Flags().Float64Var(&relTol, "rel-tol", report.DefaultTolerance.Rel, "Relative tolerance for floating-point lines")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Only print mismatching keys")

	return cmd
}

func parseReportFile(path string) (report.Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return report.Parsed{}, fmt.Errorf("open report: %w", err)
	}
	defer func() { _ = f.Close() }()

	parsed, err := report.Parse(f)
	if err != nil {
		return report.Parsed{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}
