package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/metromatic/config"
	"github.com/kilianp07/metromatic/core/instrument"
	coremetrics "github.com/kilianp07/metromatic/core/metrics"
	_ "github.com/kilianp07/metromatic/infra/metrics"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration file and build its backends without sending",
	RunE:  runValidate,
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the available metric backend types",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(coremetrics.BackendTypes(), "\n"))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, backendsCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	for _, t := range cfg.Instrument.Backends {
		if !coremetrics.HasBackend(t.Type) {
			return fmt.Errorf("%w: unknown backend type %q", coremetrics.ErrConfig, t.Type)
		}
	}
	// Build every backend, the legacy statsd section included. Nothing is sent.
	backends, err := coremetrics.NewBackends(cfg.Instrument)
	if err != nil {
		return err
	}
	for _, b := range backends {
		if c, ok := b.(io.Closer); ok {
			_ = c.Close()
		}
	}
	in := instrument.New()
	for i, m := range cfg.Instrument.Metrics {
		if err := in.Validate(m); err != nil {
			return fmt.Errorf("metrics[%d]: %w", i, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d backends, %d metrics, %d mqtt bindings\n",
		cfgPath, len(cfg.Instrument.Backends), len(cfg.Instrument.Metrics), len(cfg.MQTT.Events))
	return nil
}
