package theme

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StaticScheme is a fixed signal; true means dark
type StaticScheme bool

// PrefersDark implements Scheme
func (s StaticScheme) PrefersDark() bool {
	return bool(s)
}

// ClientHintHeader carries the browser's prefers-color-scheme value
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// HeaderScheme reads the color scheme client hint of a request
type HeaderScheme http.Header

// PrefersDark implements Scheme. Browsers send the value quoted, e.g. "dark".
func (h HeaderScheme) PrefersDark() bool {
	v := http.Header(h).Get(ClientHintHeader)
	return strings.EqualFold(strings.Trim(strings.TrimSpace(v), `"`), "dark")
}

// AdvertiseClientHints asks browsers to send the color scheme hint on later
// requests and marks the response as varying on it.
func AdvertiseClientHints(h http.Header) {
	h.Add("Accept-CH", ClientHintHeader)
	h.Add("Vary", ClientHintHeader)
}

// Signal is a settable SchemeWatcher
type Signal struct {
	mu        sync.Mutex
	dark      bool
	nextID    int
	listeners map[int]func(bool)
}

// NewSignal returns a signal starting at dark
func NewSignal(dark bool) *Signal {
	return &Signal{dark: dark, listeners: make(map[int]func(bool))}
}

// PrefersDark implements Scheme
func (s *Signal) PrefersDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Set changes the signal and notifies watchers when the value differs
func (s *Signal) Set(dark bool) {
	s.mu.Lock()
	if s.dark == dark {
		s.mu.Unlock()
		return
	}
	s.dark = dark
	listeners := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(dark)
	}
}

// Watch implements SchemeWatcher
func (s *Signal) Watch(fn func(dark bool)) (stop func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Watchers reports how many watchers are attached
func (s *Signal) Watchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// DefaultPollInterval is how often PollingScheme samples its probe
const DefaultPollInterval = 2 * time.Second

// PollingScheme turns a probe into a SchemeWatcher by sampling it
type PollingScheme struct {
	probe    func() bool
	interval time.Duration
}

// NewPollingScheme samples probe every interval; zero means DefaultPollInterval
func NewPollingScheme(probe func() bool, interval time.Duration) *PollingScheme {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingScheme{probe: probe, interval: interval}
}

// TerminalScheme follows the background color of the controlling terminal
func TerminalScheme(interval time.Duration) *PollingScheme {
	return NewPollingScheme(lipgloss.HasDarkBackground, interval)
}

// PrefersDark implements Scheme
func (p *PollingScheme) PrefersDark() bool {
	return p.probe()
}

// Watch implements SchemeWatcher. fn runs on a background goroutine each time
// the sampled value changes; stop waits for that goroutine to exit.
func (p *PollingScheme) Watch(fn func(dark bool)) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})
	last := p.probe()

	go func() {
		defer close(exited)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if dark := p.probe(); dark != last {
					last = dark
					fn(dark)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-exited
		})
	}
}
