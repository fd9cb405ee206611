package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/config"
)

// loadConfig loads the file at path, or the nearest reflow.yaml when path is
// empty. Without any file the defaults are used.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	found, err := config.Find(".")
	if err != nil {
		return config.Default(), nil
	}
	return config.LoadFile(found)
}

func configCmd(flags *globalFlags) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration serve would use, with defaults filled in.

Examples:
  reflow config
  reflow config --config ./deploy/reflow.yaml
  reflow config --validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.config)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if validate {
				source := cfg.Path()
				if source == "" {
					source = "defaults"
				}
				success(out, "Configuration is valid (%s)", source)
				return nil
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			if p := cfg.Path(); p != "" {
				fmt.Fprintf(out, "# %s\n", p)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Only check the configuration")

	return cmd
}
