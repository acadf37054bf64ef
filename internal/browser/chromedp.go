// internal/browser/chromedp.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/valpere/LeadScrapexter/internal/antidetect"
	"github.com/valpere/LeadScrapexter/internal/proxy"
	"github.com/valpere/LeadScrapexter/internal/utils"
)

var browserLogger = utils.NewComponentLogger("browser")

// Browser owns the Chrome process and hands out tab-backed Pages. All Pages
// share one browser context, so cookies and session state are shared while
// navigation stays independent per tab.
type Browser struct {
	config      *Config
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewBrowser launches a headless Chrome instance.
func NewBrowser(config *Config) (*Browser, error) {
	if config == nil {
		config = DefaultConfig()
	}

	opts := append([]chromedp.ExecAllocatorOption{},
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(config.ViewportWidth, config.ViewportHeight),
	)

	if !config.Visible {
		opts = append(opts, chromedp.Headless)
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = antidetect.NewUserAgentRotator(nil).GetRandom()
	}
	opts = append(opts, chromedp.UserAgent(userAgent))

	if len(config.Proxies) > 0 {
		rotator, err := proxy.NewRotator(config.Proxies)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy configuration: %w", err)
		}
		if proxyURL := rotator.Next(); proxyURL != "" {
			browserLogger.Infof("routing traffic through %s", proxyURL)
			opts = append(opts, chromedp.ProxyServer(proxyURL))
		}
	}
	if config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(config.UserDataDir))
	}
	if config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so NewPage failures surface here.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserLogger.Infof("launched Chrome (headless=%v)", !config.Visible)

	return &Browser{
		config:      config,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// NewPage opens a new tab and returns it as a Page.
func (b *Browser) NewPage() (Page, error) {
	ctx, cancel := chromedp.NewContext(b.ctx)

	if err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.EmulateViewport(int64(b.config.ViewportWidth), int64(b.config.ViewportHeight)),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &chromePage{
		config: b.config,
		ctx:    ctx,
		cancel: cancel,
		stats:  &Stats{},
	}, nil
}

// Close shuts the browser down.
func (b *Browser) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

// chromePage implements Page on top of one chromedp tab context.
type chromePage struct {
	config *Config
	ctx    context.Context
	cancel context.CancelFunc
	stats  *Stats
}

// operationContext derives the context for one CDP operation. chromedp.Run
// routes through the tab context, so the operation context must descend from
// tab — but cancelling the caller's context must still abort the operation,
// not just be noticed between operations. timeout <= 0 means no deadline.
func operationContext(caller, tab context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var opCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		opCtx, cancel = context.WithTimeout(tab, timeout)
	} else {
		opCtx, cancel = context.WithCancel(tab)
	}
	stop := context.AfterFunc(caller, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	start := time.Now()

	navCtx, cancel := operationContext(ctx, p.ctx, p.config.NavigateTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		p.stats.Errors++
		if errors.Is(err, context.DeadlineExceeded) {
			p.stats.TimeoutsOccurred++
			return fmt.Errorf("%w: %s", ErrNavigationTimeout, url)
		}
		return fmt.Errorf("navigation failed: %w", err)
	}

	// Secondary soft wait: DOM is loaded, give in-flight requests a chance to
	// settle. Sites with persistent polling never go idle, so running out the
	// clock here is not an error.
	p.waitNetworkQuiet(ctx, p.config.IdleTimeout)

	loadTime := time.Since(start)
	p.stats.PagesLoaded++
	if p.stats.PagesLoaded == 1 {
		p.stats.AverageLoadTime = loadTime
	} else {
		p.stats.AverageLoadTime = (p.stats.AverageLoadTime + loadTime) / 2
	}

	return nil
}

// waitNetworkQuiet blocks until no network activity has been observed for
// quietWindow, or until maxWait elapses, whichever comes first.
func (p *chromePage) waitNetworkQuiet(ctx context.Context, maxWait time.Duration) {
	const quietWindow = 500 * time.Millisecond

	idleCtx, cancel := operationContext(ctx, p.ctx, maxWait)
	defer cancel()

	activity := make(chan struct{}, 64)
	listenCtx, stopListening := context.WithCancel(p.ctx)
	defer stopListening()

	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent, *network.EventLoadingFinished, *network.EventLoadingFailed:
			select {
			case activity <- struct{}{}:
			default:
			}
		}
	})

	timer := time.NewTimer(quietWindow)
	defer timer.Stop()

	for {
		select {
		case <-idleCtx.Done():
			return
		case <-activity:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(quietWindow)
		case <-timer.C:
			return
		}
	}
}

func (p *chromePage) Text(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	opCtx, cancel := operationContext(ctx, p.ctx, timeout)
	defer cancel()

	var text string
	err := chromedp.Run(opCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("text extraction failed for %q: %w", selector, err)
	}
	return text, nil
}

func (p *chromePage) Meta(ctx context.Context, property string) (string, error) {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector('meta[property=%s]'); return el ? el.content : ''; })()`,
		strconv.Quote(property),
	)

	opCtx, cancel := operationContext(ctx, p.ctx, 0)
	defer cancel()

	var content string
	if err := chromedp.Run(opCtx, chromedp.Evaluate(script, &content)); err != nil {
		return "", fmt.Errorf("meta lookup failed for %q: %w", property, err)
	}
	return content, nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	opCtx, cancel := operationContext(ctx, p.ctx, 0)
	defer cancel()

	var html string
	if err := chromedp.Run(opCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		p.stats.Errors++
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (p *chromePage) ScrollToBottom(ctx context.Context) error {
	opCtx, cancel := operationContext(ctx, p.ctx, 0)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
	)
	if err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

func (p *chromePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	opCtx, cancel := operationContext(ctx, p.ctx, timeout)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click failed for %q: %w", selector, err)
	}
	return nil
}

func (p *chromePage) Close() error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// GetStats returns page statistics.
func (p *chromePage) GetStats() *Stats {
	return p.stats
}
