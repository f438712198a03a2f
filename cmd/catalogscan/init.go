package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/catalogscan.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new catalogscan configuration file",
		Long: `Initialize creates a new .catalogscan configuration file in the current directory.

The generated file includes:
- Default pacing and pool settings
- The catalog base URL and path templates
- Commented examples for cookies, headers and CSS selectors

Examples:
  # Create .catalogscan in current directory
  catalogscan init

  # Create config file at a specific path
  catalogscan init -o myconfig.yaml

  # Force overwrite existing file
  catalogscan init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/catalogscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file may hold a session cookie.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - The catalog base URL and page paths")
	fmt.Fprintln(out, "  - Pacing, pool size and term selection")
	fmt.Fprintln(out, "  - Cookies, headers and CSS selectors")

	return nil
}
