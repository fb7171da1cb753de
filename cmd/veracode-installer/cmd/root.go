package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veracode/cli-installer/internal/config"
	"github.com/veracode/cli-installer/internal/logger"
	"github.com/veracode/cli-installer/internal/service/installer"
	"github.com/veracode/cli-installer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// proxyURL routes all network requests when set. Must use the http:// scheme.
	proxyURL string

	// baseURL overrides the release distribution endpoint.
	baseURL string

	// installRoot overrides the directory the tool is installed under.
	installRoot string

	// logLevel sets the minimum log level for console output.
	logLevel string

	// rootCmd represents the base command for installing the tool.
	rootCmd = &cobra.Command{
		Use:   "veracode-installer [version]",
		Short: "Download and install the Veracode CLI",
		Long: "Download the platform-specific Veracode CLI release archive, install it " +
			"into the application data directory and register it on the PATH. " +
			"With no argument the latest published version is installed.",
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if lvl, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(lvl)
			}
		},
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &installer.Options{
				ConfigPath:  configPath,
				Proxy:       proxyURL,
				BaseURL:     baseURL,
				InstallRoot: installRoot,
			}
			if len(args) > 0 {
				options.Version = args[0]
			}

			return installer.Run(ctx, options)
		},
	}

	// uninstallCmd removes the installation and its PATH entry.
	uninstallCmd = &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installed Veracode CLI and its PATH entry",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &installer.Options{
				ConfigPath:  configPath,
				InstallRoot: installRoot,
			}

			return installer.Uninstall(ctx, options)
		},
	}
)

// Execute runs the veracode-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(uninstallCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&installRoot, "install-root", "", "directory to install under (defaults to the application data directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP proxy URL for all requests (http:// scheme only)")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "release distribution base URL")
}
