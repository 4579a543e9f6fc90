package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlasocr/wasl/internal/config"
	"github.com/atlasocr/wasl/internal/extract"
	"github.com/atlasocr/wasl/internal/ocr/tesseract"
	"github.com/atlasocr/wasl/internal/template"
	"github.com/atlasocr/wasl/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wasl",
	Short: "Bilingual field extraction for scanned administrative documents",
	Long: `wasl reads scanned Moroccan administrative documents and extracts
typed, validated fields from them. Document layouts are declared in JSON
templates; each field names its location on the page and the script it is
printed in, and recognition runs with a Tesseract profile tuned per script
(French, Arabic, or digit-only receipt numbers).

Documents without a template go through the auto-layout scanner, which
classifies Arabic and French zones on the page before recognition.

Examples:
  wasl extract recepisse.png --template assoc_receipt
  wasl scan page.jpg --format json
  wasl templates list
  wasl serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.PersistentFlags().GetBool("version")
		if v {
			printVersion(cmd.OutOrStdout())
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags that apply to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in ., $HOME/.wasl, $HOME/.config/wasl, /etc/wasl)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("templates", config.DefaultTemplatesPath,
		"template file or directory (can also be set via WASL_TEMPLATES_PATH)")

	// Version flag for tests and usability
	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	// Bind flags to the loader's viper instance so GetConfig sees them
	v := GetConfigLoader().GetViper()
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("templates_path", rootCmd.PersistentFlags().Lookup("templates"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Initialize configuration if not already done
		if globalConfig == nil {
			initConfig()
		}

		var logLevel slog.Level
		if globalConfig.Verbose {
			logLevel = slog.LevelDebug
		} else {
			switch globalConfig.LogLevel {
			case "debug":
				logLevel = slog.LevelDebug
			case "info":
				logLevel = slog.LevelInfo
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
		}

		// Logs go to stderr; stdout carries command output only.
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	loader := GetConfigLoader()

	var err error
	if cfgFile != "" {
		// Use config file from the flag
		globalConfig, err = loader.LoadWithFile(cfgFile)
	} else {
		// Search for config in default locations
		globalConfig, err = loader.Load()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}

	// Reload configuration to ensure CLI flags are included
	// This is necessary because flag binding happens after initial config loading
	loader := GetConfigLoader()
	var cfg config.Config
	if err := loader.GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig // Return the original config if unmarshal fails
	}

	return &cfg
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

// printVersion writes the build identification block.
func printVersion(w io.Writer) {
	ver, commit, date := version.Info()
	_, _ = fmt.Fprintf(w, "wasl %s\n", ver)
	_, _ = fmt.Fprintf(w, "Commit: %s\n", commit)
	_, _ = fmt.Fprintf(w, "Built: %s\n", date)
}

// loadTemplates opens the template store named by the configuration: a JSON
// file or a directory of JSON files.
func loadTemplates(cfg *config.Config) (*template.Store, error) {
	info, err := os.Stat(cfg.TemplatesPath)
	if err == nil && info.IsDir() {
		return template.LoadDir(cfg.TemplatesPath)
	}
	return template.Load(cfg.TemplatesPath)
}

// newEngineBuilder assembles the parts every command shares: the Tesseract
// backend and the worker and layout settings.
func newEngineBuilder(cfg *config.Config) (*extract.Builder, error) {
	backend, err := tesseract.New(cfg.OCR.Backend, cfg.TesseractOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR backend: %w", err)
	}
	return extract.NewBuilder().
		WithBackend(backend).
		WithWorkers(cfg.Extract.Workers).
		WithLayoutConfig(cfg.ToLayoutConfig()), nil
}

// buildEngine wires a full engine including the template store.
func buildEngine(cfg *config.Config) (*extract.Engine, error) {
	store, err := loadTemplates(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	b, err := newEngineBuilder(cfg)
	if err != nil {
		return nil, err
	}
	eng, err := b.WithStore(store).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction engine: %w", err)
	}
	return eng, nil
}

// buildScanEngine wires an engine without the template store; auto-layout
// scans never consult it.
func buildScanEngine(cfg *config.Config) (*extract.Engine, error) {
	b, err := newEngineBuilder(cfg)
	if err != nil {
		return nil, err
	}
	eng, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction engine: %w", err)
	}
	return eng, nil
}
