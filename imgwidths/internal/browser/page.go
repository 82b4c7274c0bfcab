// CLAUDE:SUMMARY Rod page acting as the layout oracle: navigate to network idle, emulate viewport sizes, measure element width.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// measureJS returns the laid-out width of the first element matching the
// selector, in integer CSS pixels, or null when nothing matches.
const measureJS = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return null;
	if (el instanceof HTMLImageElement) return el.width;
	return el.clientWidth;
}`

// Page is one browser tab used as the layout oracle. Its viewport is
// process-wide mutable state: a Page must have a single writer at a time.
type Page struct {
	page    *rod.Page
	router  *rod.HijackRouter // nil without resource blocking
	manager *Manager
	idle    time.Duration
}

// OpenPage creates a new tab with stealth and resource blocking applied.
// The tab starts blank; call Navigate.
func OpenPage(ctx context.Context, mgr *Manager) (*Page, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, errors.New("browser: no active browser")
	}

	var page *rod.Page
	var err error
	if mgr.cfg.Stealth >= LevelStealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	p := &Page{page: page, manager: mgr, idle: 500 * time.Millisecond}
	if len(mgr.cfg.ResourceBlocking) > 0 {
		router, err := applyResourceBlocking(page, mgr.cfg.ResourceBlocking)
		if err != nil {
			mgr.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
		p.router = router
	}
	return p, nil
}

// Navigate loads url and waits until the load event fired and the network
// has been idle for a short while. Failures are *measure.NavigationError.
func (p *Page) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)

	waitIdle := pg.WaitRequestIdle(p.idle, nil, nil, nil)
	if err := pg.Navigate(url); err != nil {
		return &measure.NavigationError{URL: url, Err: err}
	}
	if err := pg.WaitLoad(); err != nil {
		return &measure.NavigationError{URL: url, Err: err}
	}
	waitIdle()
	if err := ctx.Err(); err != nil {
		return &measure.NavigationError{URL: url, Err: err}
	}

	p.manager.cfg.Logger.Info("browser: page loaded", "url", url)
	return nil
}

// Resize emulates a viewport of width×height CSS pixels at the given
// device scale factor.
func (p *Page) Resize(ctx context.Context, width, height int, scale float64) error {
	err := p.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: scale,
		Mobile:            false,
	})
	if err != nil {
		return fmt.Errorf("browser: set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

// Measure returns the rendered width of the element matched by selector.
// It returns measure.ErrSelectorNotFound when nothing matches.
func (p *Page) Measure(ctx context.Context, selector string) (int, error) {
	res, err := p.page.Context(ctx).Eval(measureJS, selector)
	if err != nil {
		return 0, fmt.Errorf("browser: eval: %w", err)
	}
	if res.Value.Nil() {
		return 0, measure.ErrSelectorNotFound
	}
	return res.Value.Int(), nil
}

// Close stops request hijacking and closes the tab. Safe to call twice.
func (p *Page) Close() error {
	var errs []error
	if p.router != nil {
		if err := p.router.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("browser: stop hijack router: %w", err))
		}
		p.router = nil
	}
	if p.page != nil {
		if err := p.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("browser: close tab: %w", err))
		}
		p.page = nil
	}
	return errors.Join(errs...)
}
