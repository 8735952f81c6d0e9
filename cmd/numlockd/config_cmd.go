package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"numlockd/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the agent configuration",
	}

	var format string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after defaults and environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			defer loader.Close()

			return config.Encode(cmd.OutOrStdout(), cfg, format)
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml, yaml or json")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			file := root.configPath
			if file == "" {
				file = config.ConfigPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), file)
		},
	}

	var (
		initFormat string
		force      bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Long: `Write the default configuration to --config, or to the default location
with the extension picked by --format. An existing file is kept unless
--force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := initPath(root.configPath, initFormat)
			if err != nil {
				return err
			}
			if _, err := os.Stat(file); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", file)
			}
			if err := config.SaveConfig(config.DefaultConfig(), file); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", file)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&initFormat, "format", "f", "toml", "file format when --config is not set: toml, yaml or json")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd, path, show)
	return cmd
}

// initPath resolves where config init writes. An explicit path keeps its
// own extension.
func initPath(explicit, format string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	switch format = strings.ToLower(format); format {
	case "toml", "yaml", "json":
	default:
		return "", fmt.Errorf("%w: unsupported format %q", errConfig, format)
	}
	def := config.ConfigPath()
	return strings.TrimSuffix(def, filepath.Ext(def)) + "." + format, nil
}
