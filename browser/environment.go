package browser

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Target is an event source of the host page.
type Target int

const (
	TargetDocument Target = iota
	TargetWindow
)

// ErrRange is the error kind a locale compare reports for option values
// it does not accept.
var ErrRange = errors.New("range error")

// Environment is the host page the service runs in.
type Environment interface {
	// UserAgent returns the navigator user agent string.
	UserAgent() string
	// DocumentHidden reads a hidden property of the document. ok is false
	// when the document does not expose the property.
	DocumentHidden(property string) (hidden bool, ok bool)
	// AddEventListener registers handler for event on target and returns
	// a function removing it again.
	AddEventListener(target Target, event string, handler func()) (remove func())
	// LocaleCompare compares a and b for the given locales. Invalid
	// option values are reported with an error wrapping ErrRange.
	LocaleCompare(a, b, locales string) (int, error)
}

type listener struct {
	target  Target
	event   string
	handler func()
}

// StaticEnvironment is an Environment without a browser behind it. The
// user agent is fixed, document properties and events are driven through
// SetHidden and Dispatch.
type StaticEnvironment struct {
	mu        sync.Mutex
	userAgent string
	hidden    map[string]bool
	listeners []*listener
}

// NewStaticEnvironment creates a StaticEnvironment reporting userAgent.
func NewStaticEnvironment(userAgent string) *StaticEnvironment {
	return &StaticEnvironment{userAgent: userAgent, hidden: make(map[string]bool)}
}

// UserAgent returns the configured user agent.
func (e *StaticEnvironment) UserAgent() string {
	return e.userAgent
}

// SetHidden sets a hidden property of the document, making it present.
func (e *StaticEnvironment) SetHidden(property string, hidden bool) {
	e.mu.Lock()
	e.hidden[property] = hidden
	e.mu.Unlock()
}

// DocumentHidden reads a property set with SetHidden.
func (e *StaticEnvironment) DocumentHidden(property string) (bool, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	hidden, ok := e.hidden[property]
	return hidden, ok
}

// AddEventListener registers handler for event on target.
func (e *StaticEnvironment) AddEventListener(target Target, event string, handler func()) func() {
	l := &listener{target: target, event: event, handler: handler}
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, candidate := range e.listeners {
				if candidate == l {
					e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Dispatch fires event on target. Handlers run in registration order on
// the calling goroutine.
func (e *StaticEnvironment) Dispatch(target Target, event string) {
	e.mu.Lock()
	var handlers []func()
	for _, l := range e.listeners {
		if l.target == target && l.event == event {
			handlers = append(handlers, l.handler)
		}
	}
	e.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

// ListenerCount returns the number of registered listeners.
func (e *StaticEnvironment) ListenerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// LocaleCompare collates a and b for the BCP 47 tag in locales. An empty
// locales string uses the root collation.
func (e *StaticEnvironment) LocaleCompare(a, b, locales string) (int, error) {
	tag := language.Und
	if locales != "" {
		var err error
		tag, err = language.Parse(locales)
		if err != nil {
			return 0, fmt.Errorf("%w: incorrect locale information provided: %v", ErrRange, err)
		}
	}
	return collate.New(tag).CompareString(a, b), nil
}
