package controller

import "sync"

// RemovalNotifier is implemented by services that report receivers which
// were dropped from the session.
type RemovalNotifier interface {
	OnReceiverRemoved(receiverID string, fn func(receiverID string)) (remove func())
}

// onRemoved holds the removal callback of one controller.
type onRemoved struct {
	mu     sync.Mutex
	remove func()
}

// set replaces the registered callback. A nil callback only unregisters.
func (o *onRemoved) set(service any, receiverID string, callback func(receiverID string)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.remove != nil {
		o.remove()
		o.remove = nil
	}
	if callback == nil || receiverID == "" {
		return
	}
	if notifier, ok := service.(RemovalNotifier); ok {
		o.remove = notifier.OnReceiverRemoved(receiverID, callback)
	}
}
