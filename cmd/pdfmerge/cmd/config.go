package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/pdfmerge/internal/config"
)

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create configuration files",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after merging defaults, the config file,
PDFMERGE_* environment variables and flags. Passwords are masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		if cfg.PDF.UserPassword != "" {
			cfg.PDF.UserPassword = "********"
		}
		if cfg.PDF.OwnerPassword != "" {
			cfg.PDF.OwnerPassword = "********"
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode configuration: %w", err)
		}

		out := cmd.OutOrStdout()
		if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(out, "# config file: %s\n", used)
		}
		_, err = out.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a configuration file with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := config.ConfigFileName + ".yaml"
		if len(args) == 1 {
			filename = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(filename); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", filename)
		}

		if err := config.GenerateDefaultConfigFile(filename); err != nil {
			return fmt.Errorf("write %s: %w", filename, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", filename)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}
