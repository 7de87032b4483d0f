package cmd

import (
	"os"

	"github.com/eka-dev/ftracker/config"
	"github.com/eka-dev/ftracker/pkg/clierr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect or create the configuration file",
		Annotations: map[string]string{skipSetup: "true"},
	}

	cmd.AddCommand(configShowCmd(a), configInitCmd(a))
	return cmd
}

func configShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return clierr.New(clierr.Validation, "Invalid configuration: "+err.Error(), err)
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return clierr.New(clierr.Internal, "Failed to encode the configuration", err)
			}
			cmd.Printf("# %s\n%s", a.configPath, out)
			return nil
		},
	}
}

func configInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return clierr.New(clierr.Validation, "Config file already exists at "+a.configPath+"; use --force to overwrite it.", nil)
			}
			if err := config.Save(a.configPath, config.Default()); err != nil {
				return clierr.New(clierr.Internal, "Failed to write the config file", err)
			}
			cmd.Printf("Config written to %s\n", a.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
