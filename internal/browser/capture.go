// Package browser wraps headless-Chrome screenshot capture behind a
// narrow interface so the asset resolver can be tested without a real
// browser.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Capturer navigates to a URL and returns an image of the page. Any
// failure (timeout, navigation error, browser unavailable) is reported
// through the error; callers treat it as a fallback trigger, never as
// fatal.
type Capturer interface {
	Capture(ctx context.Context, url string, fullPage bool) ([]byte, error)
	Close() error
}

// Options configures a RodCapturer.
type Options struct {
	Width             int
	Height            int
	NavigationTimeout time.Duration
}

// RodCapturer drives a headless Chrome via rod. The browser is launched
// lazily on the first capture and reused for the rest of the run.
type RodCapturer struct {
	opts Options

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodCapturer returns an unstarted capturer; Chrome launches on the
// first Capture call.
func NewRodCapturer(opts Options) *RodCapturer {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 20 * time.Second
	}
	return &RodCapturer{opts: opts}
}

func (c *RodCapturer) ensureStarted() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		return nil
	}

	l := launcher.New().Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return fmt.Errorf("connect to chrome: %w", err)
	}

	c.launcher = l
	c.browser = b
	return nil
}

// Capture opens a fresh page, navigates with the configured timeout,
// waits for the load event plus a short settle delay, and returns the
// screenshot bytes (PNG).
func (c *RodCapturer) Capture(ctx context.Context, url string, fullPage bool) ([]byte, error) {
	if err := c.ensureStarted(); err != nil {
		return nil, err
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             c.opts.Width,
		Height:            c.opts.Height,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	page = page.Context(ctx).Timeout(c.opts.NavigationTimeout)
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for %s to load: %w", url, err)
	}
	// Give fonts and entrance animations a moment.
	time.Sleep(800 * time.Millisecond)

	data, err := page.Screenshot(fullPage, nil)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", url, err)
	}
	return data, nil
}

// Close shuts the browser down. Safe to call if nothing was launched.
func (c *RodCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launcher != nil {
		c.launcher.Cleanup()
		c.launcher = nil
	}
	return err
}
