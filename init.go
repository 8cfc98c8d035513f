package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukemcguire/sitecheck/config"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sitecheck configuration file",
		Long: `Init writes a commented configuration file holding the default settings.

Examples:
  # Create .sitecheck.yaml in the current directory
  sitecheck init

  # Create the per-user configuration file
  sitecheck init --global

  # Force overwrite an existing file
  sitecheck init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().Bool("global", false,
		"Write to the per-user XDG configuration directory instead")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}
	if global {
		outputPath = config.XDGConfigPath()
	}

	if err := config.WriteTemplateFile(outputPath, force); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	return nil
}
