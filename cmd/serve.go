package cmd

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chevolec/portalgen/internal/browser"
	"github.com/chevolec/portalgen/internal/portal"
)

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Builds the portal, serves it locally and rebuilds on changes",
	Long: `The serve command performs an initial build, then starts a local web
server on the output directory. The input CSV (and the about/layout
files, when given) are watched; any change triggers a rebuild.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "port to serve the portal on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if inputCSV == "" {
		return fmt.Errorf("--input is required")
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

	opts := portal.Options{
		Input:    inputCSV,
		About:    aboutPath,
		Layout:   layoutPath,
		Config:   appConfig,
		Capturer: capturer,
		Logger:   logger,
	}

	fmt.Println("Performing initial build...")
	if err := portal.Generate(cmd.Context(), opts); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}
	fmt.Println("Initial build successful.")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// fsnotify is most reliable watching directories, so watch each
	// file's parent and filter events down to the files we care about.
	watched := map[string]bool{}
	for _, p := range []string{inputCSV, aboutPath, layoutPath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if err := watcher.Add(dir); err != nil {
			logger.Warn("failed to watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	go func() {
		var buildTimer *time.Timer
		const debounce = 500 * time.Millisecond

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || !watched[abs] {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				logger.Info("change detected", zap.String("file", event.Name), zap.String("op", event.Op.String()))

				if buildTimer != nil {
					buildTimer.Stop()
				}
				buildTimer = time.AfterFunc(debounce, func() {
					fmt.Println("Rebuilding portal due to changes...")
					if err := portal.Generate(cmd.Context(), opts); err != nil {
						logger.Error("rebuild failed", zap.Error(err))
					} else {
						fmt.Println("Portal rebuilt successfully.")
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", zap.Error(err))
			}
		}
	}()

	addr := fmt.Sprintf(":%d", serverPort)
	fmt.Printf("Serving portal from %q on http://localhost%s\n", appConfig.OutputDir, addr)
	fmt.Println("Press Ctrl+C to stop the server.")

	fileServer := http.FileServer(http.Dir(appConfig.OutputDir))
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// No caching while iterating on the CSV.
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fileServer.ServeHTTP(w, r)
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}
