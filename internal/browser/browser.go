// Package browser owns the playwright session and adapts live pages to
// the dom interfaces consumed by the extraction pipeline.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/aymanedev/tiktok-shop-scraper/internal/dom"
)

// Suppresses the most common automation signal before any page script
// runs.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	logger  *slog.Logger
	opts    *Options
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgents     []string
	ViewportWidth  int
	ViewportHeight int
	ProxyServer    string
}

func DefaultOptions() *Options {
	return &Options{
		Headless: true,
		Timeout:  30 * time.Second,
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	}

	if opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{
			Server: opts.ProxyServer,
		}
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Browser{
		pw:      pw,
		browser: b,
		logger:  slog.Default().With("component", "browser"),
		opts:    opts,
	}, nil
}

// NewMarketPage opens a fresh browser context configured for one
// market's locale and timezone, with a rotated user agent, and returns
// the page as a dom.Page.
func (b *Browser) NewMarketPage(locale, timezone string) (dom.Page, error) {
	ua := b.opts.UserAgents[rand.Intn(len(b.opts.UserAgents))]

	browserCtx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  &ua,
		Locale:     &locale,
		TimezoneId: &timezone,
		Viewport: &playwright.Size{
			Width:  b.opts.ViewportWidth,
			Height: b.opts.ViewportHeight,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := browserCtx.AddInitScript(playwright.Script{
		Content: playwright.String(stealthScript),
	}); err != nil {
		browserCtx.Close()
		return nil, fmt.Errorf("failed to add init script: %w", err)
	}

	pg, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	pg.SetDefaultTimeout(float64(b.opts.Timeout.Milliseconds()))

	return &page{
		page:    pg,
		ctx:     browserCtx,
		timeout: b.opts.Timeout,
	}, nil
}

func (b *Browser) Close() error {
	var errs []error

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

// page adapts a playwright page to dom.Page. Each page owns its browser
// context and tears it down on Close.
type page struct {
	page    playwright.Page
	ctx     playwright.BrowserContext
	timeout time.Duration
}

func (p *page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	return nil
}

func (p *page) Root() dom.Element {
	return &element{loc: p.page.Locator("html")}
}

func (p *page) WaitFor(selector string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (p *page) ScrollToBottom() error {
	_, err := p.page.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

func (p *page) Content() (string, error) {
	return p.page.Content()
}

func (p *page) Close() error {
	if err := p.page.Close(); err != nil {
		return err
	}
	return p.ctx.Close()
}

// element adapts a playwright locator to dom.Element.
type element struct {
	loc playwright.Locator
}

func (e *element) Text() (string, error) {
	text, err := e.loc.TextContent()
	if err != nil {
		return "", err
	}
	return text, nil
}

func (e *element) Attr(name string) (string, error) {
	value, err := e.loc.GetAttribute(name)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (e *element) Query(selector string) (dom.Element, error) {
	found := e.loc.Locator(selector).First()

	count, err := found.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, dom.ErrNoMatch
	}

	return &element{loc: found}, nil
}

func (e *element) QueryAll(selector string) ([]dom.Element, error) {
	locators, err := e.loc.Locator(selector).All()
	if err != nil {
		return nil, err
	}

	elements := make([]dom.Element, 0, len(locators))
	for _, l := range locators {
		elements = append(elements, &element{loc: l})
	}

	return elements, nil
}

func (e *element) Click() error {
	return e.loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(5000),
	})
}
