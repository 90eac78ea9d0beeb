// Package browsertest provides in-memory stand-ins for the playwright
// browser objects a session touches, so page lifecycles can be tested
// without launching a browser.
package browsertest

import (
	"errors"
	"os"
	"reflect"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/themizzi/sitecheck/internal/config"
)

var (
	_ playwright.BrowserContext = (*Context)(nil)
	_ playwright.Page           = (*Page)(nil)
	_ playwright.Request        = (*Request)(nil)
	_ playwright.Video          = (*Video)(nil)
)

// Backend hands out Contexts and remembers the configs it saw
type Backend struct {
	NewContextFunc func(cfg config.SessionConfig) (playwright.BrowserContext, error)
	// HTML is served as page content for every navigation, keyed by URL
	HTML map[string]string

	mu       sync.Mutex
	configs  []config.SessionConfig
	contexts []*Context
}

func (b *Backend) NewContext(cfg config.SessionConfig) (playwright.BrowserContext, error) {
	b.mu.Lock()
	b.configs = append(b.configs, cfg)
	b.mu.Unlock()

	if b.NewContextFunc != nil {
		return b.NewContextFunc(cfg)
	}

	ctx := NewContext(cfg)
	ctx.html = b.HTML
	b.mu.Lock()
	b.contexts = append(b.contexts, ctx)
	b.mu.Unlock()
	return ctx, nil
}

// Contexts returns the contexts opened so far
func (b *Backend) Contexts() []*Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Context{}, b.contexts...)
}

// Configs returns the session configs passed to NewContext
func (b *Backend) Configs() []config.SessionConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]config.SessionConfig{}, b.configs...)
}

// LastPage returns the page of the most recently opened context
func (b *Backend) LastPage() *Page {
	contexts := b.Contexts()
	if len(contexts) == 0 {
		return nil
	}
	return contexts[len(contexts)-1].Page
}

// Context implements the parts of playwright.BrowserContext a session calls
type Context struct {
	playwright.BrowserContext

	NewPageErr error
	CloseErr   error
	CloseCalls int
	Page       *Page

	cfg  config.SessionConfig
	html map[string]string
}

func NewContext(cfg config.SessionConfig) *Context {
	return &Context{cfg: cfg}
}

func (c *Context) NewPage() (playwright.Page, error) {
	if c.NewPageErr != nil {
		return nil, c.NewPageErr
	}
	c.Page = &Page{
		viewport: &playwright.Size{Width: c.cfg.ViewportWidth, Height: c.cfg.ViewportHeight},
		html:     c.html,
	}
	if c.cfg.RecordsVideo() {
		c.Page.video = &Video{path: c.cfg.VideoDir + "page.webm"}
	}
	return c.Page, nil
}

func (c *Context) Close(options ...playwright.BrowserContextCloseOptions) error {
	c.CloseCalls++
	return c.CloseErr
}

// Page implements the parts of playwright.Page a session and its scenarios call
type Page struct {
	playwright.Page

	Closed        bool
	CloseCalls    int
	CloseErr      error
	GotoErr       error
	ScreenshotErr error

	mu                sync.Mutex
	defaultTimeout    float64
	navigationTimeout float64
	viewport          *playwright.Size
	video             *Video
	html              map[string]string
	url               string
	visited           []string
	requestHandlers   []func(playwright.Request)
}

func (p *Page) SetDefaultTimeout(timeout float64) {
	p.defaultTimeout = timeout
}

func (p *Page) SetDefaultNavigationTimeout(timeout float64) {
	p.navigationTimeout = timeout
}

// Timeouts returns the default and navigation timeouts set on the page
func (p *Page) Timeouts() (float64, float64) {
	return p.defaultTimeout, p.navigationTimeout
}

func (p *Page) SetViewportSize(width, height int) error {
	p.viewport = &playwright.Size{Width: width, Height: height}
	return nil
}

func (p *Page) ViewportSize() *playwright.Size {
	return p.viewport
}

func (p *Page) IsClosed() bool {
	return p.Closed
}

func (p *Page) Close(options ...playwright.PageCloseOptions) error {
	p.CloseCalls++
	p.Closed = true
	return p.CloseErr
}

func (p *Page) Video() playwright.Video {
	if p.video == nil {
		return nil
	}
	return p.video
}

// Goto records the navigation and emits a request event for url
func (p *Page) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	if p.GotoErr != nil {
		return nil, p.GotoErr
	}
	p.mu.Lock()
	p.url = url
	p.visited = append(p.visited, url)
	p.mu.Unlock()

	p.EmitRequest(url)
	return nil, nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Visited returns every URL passed to Goto
func (p *Page) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.visited...)
}

func (p *Page) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html[p.url], nil
}

func (p *Page) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	return nil
}

func (p *Page) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	data := []byte("\x89PNG")
	if len(options) > 0 && options[0].Path != nil {
		if err := os.WriteFile(*options[0].Path, data, 0o644); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (p *Page) OnRequest(fn func(playwright.Request)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestHandlers = append(p.requestHandlers, fn)
}

func (p *Page) RemoveListener(name string, handler interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name != "request" {
		return
	}
	target := reflect.ValueOf(handler).Pointer()
	kept := p.requestHandlers[:0]
	for _, h := range p.requestHandlers {
		if reflect.ValueOf(h).Pointer() != target {
			kept = append(kept, h)
		}
	}
	p.requestHandlers = kept
}

// RequestListeners returns the number of attached request listeners
func (p *Page) RequestListeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requestHandlers)
}

// EmitRequest delivers a request event the way playwright does
func (p *Page) EmitRequest(url string) {
	p.mu.Lock()
	handlers := append([]func(playwright.Request){}, p.requestHandlers...)
	p.mu.Unlock()
	for _, h := range handlers {
		h(&Request{url: url})
	}
}

type Request struct {
	playwright.Request
	url string
}

func (r *Request) URL() string {
	return r.url
}

type Video struct {
	playwright.Video
	path string
}

func (v *Video) Path() (string, error) {
	if v.path == "" {
		return "", errors.New("no video")
	}
	return v.path, nil
}
