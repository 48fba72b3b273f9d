package e2e

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrNoBrowser is returned by Launch when no local Chromium is installed.
var ErrNoBrowser = errors.New("no Chromium-based browser found")

// Viewport sizes used by the sidebar scenarios.
var (
	Desktop = proto.EmulationSetDeviceMetricsOverride{Width: 1280, Height: 800, DeviceScaleFactor: 1}
	// Mobile matches the iPhone 6 viewport.
	Mobile = proto.EmulationSetDeviceMetricsOverride{Width: 375, Height: 667, DeviceScaleFactor: 2, Mobile: true}
)

// Launch starts a headless browser and connects to it. Close the returned
// browser when done.
func Launch(ctx context.Context) (*rod.Browser, error) {
	bin, ok := launcher.LookPath()
	if !ok {
		return nil, ErrNoBrowser
	}
	controlURL, err := launcher.New().Bin(bin).Headless(true).NoSandbox(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	return browser, nil
}

// Open creates a page with the given viewport and navigates to url.
func Open(browser *rod.Browser, url string, viewport proto.EmulationSetDeviceMetricsOverride) (*rod.Page, error) {
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := page.SetViewport(&viewport); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}
	return page, nil
}
