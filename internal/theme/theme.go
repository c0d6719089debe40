// Package theme stores and applies the light/dark/system UI preference.
//
// The preference is held by a Service backed by an injectable Store, so each
// caller (an HTTP request, the CLI, a test) chooses where it lives. "system"
// is resolved against a Scheme signal at the time it is applied.
package theme

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Theme is a stored preference
type Theme string

// Known preferences
const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"
)

// StorageKey is the key the preference is persisted under
const StorageKey = "ui-theme"

// ErrInvalidTheme is returned for values other than light, dark and system
var ErrInvalidTheme = errors.New("invalid theme")

// Parse validates s as a Theme. Surrounding whitespace and case are ignored.
func Parse(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark, System:
		return t, nil
	default:
		return "", fmt.Errorf("%w %q: expected light, dark or system", ErrInvalidTheme, s)
	}
}

// String implements fmt.Stringer
func (t Theme) String() string {
	return string(t)
}

// Scheme reports the current OS or browser color scheme
type Scheme interface {
	PrefersDark() bool
}

// SchemeWatcher is a Scheme that announces changes.
// Watch returns a function that stops delivery; it is safe to call twice.
type SchemeWatcher interface {
	Scheme
	Watch(fn func(dark bool)) (stop func())
}

// Effective resolves t to light or dark. System follows scheme, and a nil
// scheme counts as light.
func Effective(t Theme, scheme Scheme) Theme {
	if t != System {
		return t
	}
	if scheme != nil && scheme.PrefersDark() {
		return Dark
	}
	return Light
}

// ClassList is the set of classes on the root element
type ClassList interface {
	Add(class string)
	Remove(class string)
	Contains(class string) bool
}

// Apply removes any theme class from classes and adds the resolved one.
// Applying repeatedly leaves exactly one theme class.
func Apply(classes ClassList, t Theme, scheme Scheme) Theme {
	eff := Effective(t, scheme)
	classes.Remove(string(Light))
	classes.Remove(string(Dark))
	classes.Add(string(eff))
	return eff
}

// Classes is an ordered ClassList safe for concurrent use
type Classes struct {
	mu    sync.Mutex
	names []string
}

// NewClasses returns a list holding the given classes, duplicates dropped
func NewClasses(initial ...string) *Classes {
	c := &Classes{}
	for _, name := range initial {
		c.Add(name)
	}
	return c
}

// Add appends class unless already present
func (c *Classes) Add(class string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if class == "" || slices.Contains(c.names, class) {
		return
	}
	c.names = append(c.names, class)
}

// Remove drops class if present
func (c *Classes) Remove(class string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = slices.DeleteFunc(c.names, func(n string) bool { return n == class })
}

// Contains reports whether class is present
func (c *Classes) Contains(class string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.names, class)
}

// String renders the list as an HTML class attribute value
func (c *Classes) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.names, " ")
}
