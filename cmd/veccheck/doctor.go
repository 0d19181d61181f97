package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-veccheck/internal/doctor"
	"github.com/example/go-veccheck/internal/kernel"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run backend and environment checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			name, err := resolveBackend("", cfg.Kernel.Backend)
			if err != nil {
				return err
			}
			auto, err := kernel.Select(name)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "backend: %s (configured %s)\n", auto.Name(), name)

			result := doctor.Run(doctor.Config{ConfigFile: cfgFile}, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			return nil
		},
	}

	return cmd
}
