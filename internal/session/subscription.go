package session

import (
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// RequestSubscription records the URL of every request a page issues until
// its owner unsubscribes. Playwright delivers events on its own goroutine.
type RequestSubscription struct {
	raw     playwright.Page
	handler func(playwright.Request)

	mu     sync.Mutex
	urls   []string
	active bool
}

// Subscribe starts recording requests issued by page
func Subscribe(page *Page) *RequestSubscription {
	s := &RequestSubscription{
		raw:    page.Raw(),
		active: true,
	}
	s.handler = func(req playwright.Request) {
		s.record(req.URL())
	}
	s.raw.OnRequest(s.handler)
	return s
}

func (s *RequestSubscription) record(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.urls = append(s.urls, url)
	}
}

// Unsubscribe stops recording and detaches the listener; it is idempotent.
// Playwright matches listeners by function pointer, so keep one subscription per page.
func (s *RequestSubscription) Unsubscribe() {
	s.mu.Lock()
	wasActive := s.active
	s.active = false
	s.mu.Unlock()

	if wasActive {
		s.raw.RemoveListener("request", s.handler)
	}
}

// URLs returns a copy of the recorded request URLs
func (s *RequestSubscription) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.urls))
	copy(out, s.urls)
	return out
}

// Count returns the number of recorded requests
func (s *RequestSubscription) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

// Any reports whether any recorded URL contains substr
func (s *RequestSubscription) Any(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.urls {
		if strings.Contains(u, substr) {
			return true
		}
	}
	return false
}
