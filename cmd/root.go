package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chevolec/portalgen/internal/browser"
	"github.com/chevolec/portalgen/internal/config"
	"github.com/chevolec/portalgen/internal/loader"
	"github.com/chevolec/portalgen/internal/portal"
)

var (
	cfgFile string
	verbose bool

	// Pipeline flags; persistent so serve inherits them.
	inputCSV    string
	outputDir   string
	portalTitle string
	portalDesc  string
	takeShots   bool
	fullPage    bool
	aboutPath   string
	layoutPath  string

	// Alternate modes.
	samplePath  string
	writeConfig bool

	appConfig config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "portalgen",
	Short: "Generate a static card-gallery portal from a CSV of sites",
	Long: `portalgen reads a CSV of sites (title,url,image,description) and emits a
static HTML portal: a responsive card gallery with live search and a
light/dark theme toggle.

Entries without an image get one resolved automatically: a local file is
copied, a URL is downloaded, or (with --take-screenshots) a headless
browser captures the page. When everything else fails a placeholder card
with the entry's title is generated.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

// Execute runs the CLI; input and output failures exit non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the composite literal: initializeConfig
	// refers to rootCmd, which would otherwise be an initialization cycle.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}
		return initializeConfig(cmd)
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./portal.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&inputCSV, "input", "", "path to the sites CSV (title,url,image,description)")
	pf.StringVar(&outputDir, "output-dir", "portal", "output directory")
	pf.StringVar(&portalTitle, "title", "", "portal title (default: derived from the input filename)")
	pf.StringVar(&portalDesc, "description", "", "short portal description")
	pf.BoolVar(&takeShots, "take-screenshots", false, "capture page screenshots for entries without an image (needs Chrome)")
	pf.BoolVar(&fullPage, "fullpage", false, "full-page screenshots instead of viewport-sized ones")
	pf.StringVar(&aboutPath, "about", "", "optional Markdown file rendered above the cards")
	pf.StringVar(&layoutPath, "layout", "", "optional HTML template replacing the built-in layout")

	rootCmd.Flags().StringVar(&samplePath, "make-sample", "", "write a sample CSV to the given path and exit")
	rootCmd.Flags().BoolVar(&writeConfig, "init-config", false, "write a starter portal.yaml and exit")
}

// initLogger builds the run logger: JSON at Info level normally, console
// encoder at Debug level with --verbose.
func initLogger() error {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	var err error
	logger, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func initializeConfig(_ *cobra.Command) error {
	v := viper.New()

	d := config.Default()
	v.SetDefault("title", d.Title)
	v.SetDefault("description", d.Description)
	v.SetDefault("outputDir", d.OutputDir)
	v.SetDefault("downloadTimeout", d.DownloadTimeout)
	v.SetDefault("maxAssetWidth", d.MaxAssetWidth)
	v.SetDefault("viewport.width", d.Viewport.Width)
	v.SetDefault("viewport.height", d.Viewport.Height)
	v.SetDefault("screenshots.enabled", d.Screenshots.Enabled)
	v.SetDefault("screenshots.fullPage", d.Screenshots.FullPage)
	v.SetDefault("screenshots.navigationTimeout", d.Screenshots.NavigationTimeout)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("portal")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				return fmt.Errorf("config file %s not found: %w", cfgFile, err)
			}
			// No portal.yaml around; defaults, env and flags suffice.
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		logger.Debug("using config file", zap.String("path", v.ConfigFileUsed()))
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}

	// Flags beat file and environment.
	flags := rootCmd.PersistentFlags()
	if flags.Changed("title") {
		appConfig.Title = portalTitle
	}
	if flags.Changed("description") {
		appConfig.Description = portalDesc
	}
	if flags.Changed("output-dir") {
		appConfig.OutputDir = outputDir
	}
	if flags.Changed("take-screenshots") {
		appConfig.Screenshots.Enabled = takeShots
	}
	if flags.Changed("fullpage") {
		appConfig.Screenshots.FullPage = fullPage
	}

	return appConfig.Validate()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if samplePath != "" {
		if err := loader.WriteSample(samplePath); err != nil {
			return err
		}
		fmt.Printf("Sample CSV written to %s\n", samplePath)
		return nil
	}
	if writeConfig {
		path := cfgFile
		if path == "" {
			path = "portal.yaml"
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Starter config written to %s\n", path)
		return nil
	}
	if inputCSV == "" {
		return fmt.Errorf("--input is required (or use --make-sample to create an example CSV)")
	}

	var capturer browser.Capturer
	if appConfig.Screenshots.Enabled {
		rc := browser.NewRodCapturer(browser.Options{
			Width:             appConfig.Viewport.Width,
			Height:            appConfig.Viewport.Height,
			NavigationTimeout: appConfig.Screenshots.NavigationTimeout,
		})
		defer func() { _ = rc.Close() }()
		capturer = rc
	}

	err := portal.Generate(cmd.Context(), portal.Options{
		Input:    inputCSV,
		About:    aboutPath,
		Layout:   layoutPath,
		Config:   appConfig,
		Capturer: capturer,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	abs, absErr := filepath.Abs(appConfig.OutputDir)
	if absErr != nil {
		abs = appConfig.OutputDir
	}
	fmt.Printf("Portal generated in %s\nOpen index.html in your browser.\n", abs)
	return nil
}
