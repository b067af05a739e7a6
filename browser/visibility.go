package browser

import "sync"

// hiddenProperties pairs the document hidden property with its change
// event, in order of preference.
var hiddenProperties = []struct {
	property string
	event    string
}{
	{"hidden", "visibilitychange"},
	{"mozHidden", "mozvisibilitychange"},
	{"webkitHidden", "webkitvisibilitychange"},
	{"msHidden", "msvisibilitychange"},
}

// focusEvents maps focus events to the visibility they signal.
var focusEvents = []struct {
	event   string
	visible bool
}{
	{"focus", true},
	{"blur", false},
}

// VisibilitySubscription owns the page visibility listeners. It is created
// once per service and removes every listener on Close.
type VisibilitySubscription struct {
	property string
	removers []func()
	once     sync.Once
}

// subscribeVisibility registers the visibility listeners on env and calls
// onChange with the initial state when the document exposes one.
func subscribeVisibility(env Environment, onChange func(visible bool)) *VisibilitySubscription {
	sub := &VisibilitySubscription{}

	for _, candidate := range hiddenProperties {
		if _, ok := env.DocumentHidden(candidate.property); ok {
			sub.property = candidate.property
			property := candidate.property
			sub.removers = append(sub.removers, env.AddEventListener(TargetDocument, candidate.event, func() {
				if hidden, ok := env.DocumentHidden(property); ok {
					onChange(!hidden)
				}
			}))
			break
		}
	}

	for _, focus := range focusEvents {
		visible := focus.visible
		for _, target := range []Target{TargetDocument, TargetWindow} {
			sub.removers = append(sub.removers, env.AddEventListener(target, focus.event, func() {
				onChange(visible)
			}))
		}
	}

	if sub.property != "" {
		if hidden, ok := env.DocumentHidden(sub.property); ok {
			onChange(!hidden)
		}
	}
	return sub
}

// Property returns the hidden property in use, empty when the document
// has none.
func (s *VisibilitySubscription) Property() string {
	return s.property
}

// Close removes all listeners. Further calls are no-ops.
func (s *VisibilitySubscription) Close() {
	s.once.Do(func() {
		for _, remove := range s.removers {
			remove()
		}
		s.removers = nil
	})
}
