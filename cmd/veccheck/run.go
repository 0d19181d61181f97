package main

import (
	"fmt"
	"io"
	"os"

	"github.com/example/go-veccheck/internal/kernel"
	"github.com/example/go-veccheck/internal/report"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		backendName string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the kernels once and emit the key=value report",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			name, err := resolveBackend(backendName, cfg.Kernel.Backend)
			if err != nil {
				return err
			}
			backend, err := kernel.Select(name)
			if err != nil {
				return err
			}

			rep := report.FromResult(kernel.Run(backend))

			return writeReport(rep, out)
		},
	}

	cmd.Flags().StringVar(&backendName, "backend", "", "Kernel backend: scalar|block|auto (overrides config)")
	cmd.Flags().StringVar(&out, "out", "", "Write the report to a file instead of stdout")

	return cmd
}

// writeReport emits the report to stdout or to the given file path.
func writeReport(rep report.Report, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if _, err := rep.WriteTo(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
