package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/draymottishaw/college-assisted-explorer/internal/config"
	"github.com/draymottishaw/college-assisted-explorer/internal/derive"
	"github.com/draymottishaw/college-assisted-explorer/internal/logger"
)

var (
	version      = "1.0.0"
	manifestPath string
	dataDir      string
	logLevel     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "assistctl",
		Short: "Derive and explore assisted shot metrics",
		Long: `assistctl derives career shot tables from the yearly play-by-play exports
and answers similarity and profile questions against them from the terminal.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "sources manifest (default is SOURCES_MANIFEST or sources.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the source files (overrides the manifest)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(newDeriveCmd())
	rootCmd.AddCommand(newSimilarCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("assistctl version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and the manifest shared by every command.
func setup() (*config.Config, *derive.Manifest, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.InitLoggerWithOutput(logLevel, true, os.Stderr)

	path := cfg.SourcesManifest
	if manifestPath != "" {
		path = manifestPath
	}
	m, err := derive.LoadManifest(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	switch {
	case dataDir != "":
		m.DataDir = dataDir
	case cfg.DataDir != "" && m.DataDir == derive.DefaultManifest().DataDir:
		m.DataDir = cfg.DataDir
	}
	return cfg, m, nil
}
