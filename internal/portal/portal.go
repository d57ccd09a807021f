// Package portal wires loader, asset resolver and renderer into one
// build. The command layer and the serve rebuild loop both call
// Generate.
package portal

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chevolec/portalgen/internal/assets"
	"github.com/chevolec/portalgen/internal/browser"
	"github.com/chevolec/portalgen/internal/config"
	"github.com/chevolec/portalgen/internal/loader"
	"github.com/chevolec/portalgen/internal/model"
	"github.com/chevolec/portalgen/internal/render"
)

// Options carries everything one build needs.
type Options struct {
	Input  string
	About  string // optional Markdown intro
	Layout string // optional layout override
	Config config.Config

	// Capturer enables the screenshot fallback when non-nil.
	Capturer browser.Capturer

	Logger *zap.Logger
}

// Generate runs the whole pipeline: load CSV, resolve one asset per row,
// render index.html. Row-level problems are logged and survived; only
// input-file and output-write failures are returned.
func Generate(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config

	entries, err := loader.Load(opts.Input, logger)
	if err != nil {
		return err
	}

	renderer, err := render.New(opts.Layout)
	if err != nil {
		return err
	}

	title := cfg.Title
	if title == "" {
		title = titleFromFilename(opts.Input)
	}
	description := cfg.Description

	var aboutHTML template.HTML
	if opts.About != "" {
		about, err := render.LoadAbout(opts.About)
		if err != nil {
			return err
		}
		aboutHTML = about.Body
		if about.Title != "" {
			title = about.Title
		}
		if about.Description != "" {
			description = about.Description
		}
	}

	assetDir := filepath.Join(cfg.OutputDir, "assets")
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return &render.OutputError{Path: assetDir, Err: err}
	}

	resolver := assets.NewResolver(assets.Options{
		AssetDir:          assetDir,
		Client:            &http.Client{Timeout: cfg.DownloadTimeout},
		Capturer:          opts.Capturer,
		FullPage:          cfg.Screenshots.FullPage,
		MaxWidth:          cfg.MaxAssetWidth,
		PlaceholderWidth:  cfg.Viewport.Width,
		PlaceholderHeight: cfg.Viewport.Height,
		Logger:            logger,
	})

	cards := make([]model.ResolvedCard, 0, len(entries))
	for i, entry := range entries {
		asset, err := resolver.Resolve(ctx, i, entry)
		if err != nil {
			return &render.OutputError{Path: assetDir, Err: err}
		}
		logger.Debug("entry resolved",
			zap.String("title", entry.Title),
			zap.String("asset", asset))
		cards = append(cards, model.ResolvedCard{Entry: entry, Asset: asset})
	}

	p := model.Portal{
		Title:       title,
		Description: description,
		About:       aboutHTML,
		Cards:       cards,
		GeneratedAt: time.Now(),
	}
	if err := renderer.WriteIndex(cfg.OutputDir, p); err != nil {
		logger.Error("portal generation failed, output directory is incomplete",
			zap.String("outputDir", cfg.OutputDir),
			zap.Error(err))
		return err
	}

	logger.Info("portal generated",
		zap.String("outputDir", cfg.OutputDir),
		zap.Int("cards", len(cards)))
	return nil
}

// titleFromFilename turns "my-sites.csv" into "My Sites"; used when
// neither flag, config nor about frontmatter names the portal.
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	base = strings.TrimSpace(base)
	if base == "" {
		return "My Portal"
	}
	return cases.Title(language.English).String(base)
}
