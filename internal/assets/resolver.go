// Package assets turns each site entry into exactly one image file in
// the output assets folder. Strategies are tried in a fixed order (local
// copy, download, screenshot, placeholder); a failing strategy logs a
// warning and the next one takes over, so a bad row can never take the
// run down.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/chevolec/portalgen/internal/browser"
	"github.com/chevolec/portalgen/internal/model"
)

const (
	maxDownloadBytes = 20 << 20
	userAgent        = "portalgen/1.0"
)

// Options configures a Resolver.
type Options struct {
	// AssetDir is the on-disk assets directory; it must exist.
	AssetDir string

	// Client is used for image downloads. A default with a 30s timeout
	// is installed when nil.
	Client *http.Client

	// Capturer provides the screenshot fallback; nil disables it.
	Capturer browser.Capturer
	FullPage bool

	// MaxWidth caps downloaded and captured images. Local copies are
	// written byte-identical regardless.
	MaxWidth int

	// Placeholder canvas size.
	PlaceholderWidth  int
	PlaceholderHeight int

	Logger *zap.Logger
}

// Resolver resolves entries sequentially; asset filenames come from the
// 1-based row index, so they are collision-free and stable across runs.
type Resolver struct {
	opts Options
}

// NewResolver fills in defaults and returns a ready resolver.
func NewResolver(opts Options) *Resolver {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 1600
	}
	if opts.PlaceholderWidth <= 0 {
		opts.PlaceholderWidth = 1280
	}
	if opts.PlaceholderHeight <= 0 {
		opts.PlaceholderHeight = 800
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Resolver{opts: opts}
}

// Resolve produces the portal-relative asset path for one entry. It only
// returns an error when even the placeholder cannot be written, which is
// an output failure, not a row failure.
func (r *Resolver) Resolve(ctx context.Context, idx int, entry model.SiteEntry) (string, error) {
	strategies := []struct {
		name string
		run  func(context.Context, int, model.SiteEntry) (string, error)
	}{
		{"local copy", r.copyLocal},
		{"download", r.download},
		{"screenshot", r.screenshot},
	}

	for _, s := range strategies {
		name, err := s.run(ctx, idx, entry)
		if err != nil {
			r.opts.Logger.Warn("image strategy failed, falling through",
				zap.String("strategy", s.name),
				zap.String("title", entry.Title),
				zap.Error(err))
			continue
		}
		if name != "" {
			return path.Join("assets", name), nil
		}
	}

	name, err := r.placeholder(idx, entry)
	if err != nil {
		return "", err
	}
	return path.Join("assets", name), nil
}

// copyLocal handles an image field pointing at an existing local file.
// Returns ("", nil) when the field is empty or a URL.
func (r *Resolver) copyLocal(_ context.Context, idx int, entry model.SiteEntry) (string, error) {
	if entry.Image == "" || isRemoteURL(entry.Image) {
		return "", nil
	}

	src, err := os.Open(entry.Image)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", entry.Image, err)
	}
	defer src.Close()

	name := assetName(idx, filepath.Ext(entry.Image))
	dst, err := os.Create(filepath.Join(r.opts.AssetDir, name))
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy %s: %w", entry.Image, err)
	}
	return name, nil
}

// download handles an image field holding an http/https URL. The body
// must decode as an image; an error page served with a 200 therefore
// falls through instead of becoming a broken asset.
func (r *Resolver) download(ctx context.Context, idx int, entry model.SiteEntry) (string, error) {
	if !isRemoteURL(entry.Image) {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.Image, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.opts.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("response is not an image: %w", err)
	}

	ext, known := urlExt(entry.Image)
	name := assetName(idx, ext)
	target := filepath.Join(r.opts.AssetDir, name)

	switch {
	case img.Bounds().Dx() > r.opts.MaxWidth:
		resized := imaging.Resize(img, r.opts.MaxWidth, 0, imaging.Lanczos)
		if err := imaging.Save(resized, target); err != nil {
			return "", fmt.Errorf("save resized image: %w", err)
		}
	case known:
		// Recognized format: keep the original bytes untouched.
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return "", fmt.Errorf("write image: %w", err)
		}
	default:
		// Unknown source format: re-encode as PNG so the extension
		// matches the content.
		if err := imaging.Save(img, target); err != nil {
			return "", fmt.Errorf("save image: %w", err)
		}
	}
	return name, nil
}

// screenshot asks the capturer for a render of the entry's URL. Returns
// ("", nil) when screenshots are disabled.
func (r *Resolver) screenshot(ctx context.Context, idx int, entry model.SiteEntry) (string, error) {
	if r.opts.Capturer == nil {
		return "", nil
	}

	data, err := r.opts.Capturer.Capture(ctx, entry.URL, r.opts.FullPage)
	if err != nil {
		return "", err
	}

	name := assetName(idx, ".png")
	target := filepath.Join(r.opts.AssetDir, name)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}
	if img.Bounds().Dx() > r.opts.MaxWidth {
		resized := imaging.Resize(img, r.opts.MaxWidth, 0, imaging.Lanczos)
		if err := imaging.Save(resized, target); err != nil {
			return "", fmt.Errorf("save resized screenshot: %w", err)
		}
		return name, nil
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return name, nil
}

// placeholder is the terminal strategy; it cannot fall through.
func (r *Resolver) placeholder(idx int, entry model.SiteEntry) (string, error) {
	text := entry.Title
	if text == "" {
		text = entry.URL
	}

	img := Placeholder(text, r.opts.PlaceholderWidth, r.opts.PlaceholderHeight)
	name := assetName(idx, ".png")
	if err := imaging.Save(img, filepath.Join(r.opts.AssetDir, name)); err != nil {
		return "", fmt.Errorf("write placeholder for %q: %w", text, err)
	}
	return name, nil
}

func assetName(idx int, ext string) string {
	return fmt.Sprintf("img%d%s", idx+1, ext)
}

func isRemoteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// urlExt picks a usable extension from the URL path. The second return
// reports whether the URL actually named a recognized image format;
// unrecognized sources get .png and are re-encoded.
func urlExt(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".png", false
	}
	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".png", ".jpg", ".jpeg", ".gif":
		return ext, true
	default:
		return ".png", false
	}
}
