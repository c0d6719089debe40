package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chadcn/registry-catalog/internal/logger"
)

// Service owns one preference: it loads it from a Store, validates and
// persists changes, and notifies subscribers.
type Service struct {
	store    Store
	fallback Theme

	mu        sync.RWMutex
	current   Theme
	nextID    int
	listeners map[int]func(Theme)
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithDefault sets the preference used when the store holds none
func WithDefault(t Theme) ServiceOption {
	return func(s *Service) {
		s.fallback = t
	}
}

// NewService returns a service over store. Call Init before Get.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		fallback:  System,
		listeners: make(map[int]func(Theme)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = s.fallback
	return s
}

// Init loads the stored preference. A missing or unreadable value leaves the
// default in place and is not written back.
func (s *Service) Init(ctx context.Context) (Theme, error) {
	t, err := s.store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoPreference):
		t = s.fallback
		err = nil
	case errors.Is(err, ErrInvalidTheme):
		logger.Warnf("Ignoring stored theme preference: %v", err)
		t = s.fallback
		err = nil
	default:
		t = s.fallback
		err = fmt.Errorf("failed to load theme preference: %w", err)
	}

	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
	return t, err
}

// Get returns the current preference
func (s *Service) Get() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set validates, persists and publishes t. Nothing changes when saving fails.
func (s *Service) Set(ctx context.Context, t Theme) error {
	t, err := Parse(string(t))
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, t); err != nil {
		return fmt.Errorf("failed to save theme preference: %w", err)
	}

	s.mu.Lock()
	s.current = t
	listeners := make([]func(Theme), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(t)
	}
	return nil
}

// Subscribe calls fn after every successful Set until the returned function
// is called.
func (s *Service) Subscribe(fn func(Theme)) (unsubscribe func()) {
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

// Effective resolves the current preference against scheme
func (s *Service) Effective(scheme Scheme) Theme {
	return Effective(s.Get(), scheme)
}

// Apply applies the current preference to classes
func (s *Service) Apply(classes ClassList, scheme Scheme) Theme {
	return Apply(classes, s.Get(), scheme)
}

// WatchScheme re-applies the theme to classes whenever watcher reports a
// change, but only while the preference is System. Explicit choices also
// take effect immediately through a subscription. detach stops both.
func (s *Service) WatchScheme(watcher SchemeWatcher, classes ClassList) (detach func()) {
	stop := watcher.Watch(func(dark bool) {
		if s.Get() == System {
			Apply(classes, System, StaticScheme(dark))
		}
	})
	unsubscribe := s.Subscribe(func(t Theme) {
		Apply(classes, t, watcher)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			unsubscribe()
		})
	}
}
