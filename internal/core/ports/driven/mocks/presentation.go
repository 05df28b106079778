package mocks

import (
	"sync"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

var (
	_ driven.NotificationSink = (*RecordingNotifier)(nil)
	_ driven.NavigationSink   = (*RecordingNavigator)(nil)
	_ driven.LoadingIndicator = (*RecordingIndicator)(nil)
)

// RecordingNotifier records every notification it receives
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

// NewRecordingNotifier creates a new RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(kind domain.NotificationKind, key domain.MessageKey, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	entry := domain.Notification{Kind: kind, Key: key}
	if err != nil {
		entry.Error = err.Error()
	}
	n.notifications = append(n.notifications, entry)
}

// Notifications returns the recorded notifications in order
func (n *RecordingNotifier) Notifications() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Notification, len(n.notifications))
	copy(out, n.notifications)
	return out
}

// Keys returns the recorded message keys in order
func (n *RecordingNotifier) Keys() []domain.MessageKey {
	var keys []domain.MessageKey
	for _, entry := range n.Notifications() {
		keys = append(keys, entry.Key)
	}
	return keys
}

// RecordingNavigator records navigation intents
type RecordingNavigator struct {
	mu     sync.Mutex
	routes []domain.Route
}

// NewRecordingNavigator creates a new RecordingNavigator
func NewRecordingNavigator() *RecordingNavigator {
	return &RecordingNavigator{}
}

func (n *RecordingNavigator) NavigateTo(route domain.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

// Routes returns the recorded routes in order
func (n *RecordingNavigator) Routes() []domain.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Route, len(n.routes))
	copy(out, n.routes)
	return out
}

// RecordingIndicator records every loading transition
type RecordingIndicator struct {
	mu          sync.Mutex
	transitions []bool
}

// NewRecordingIndicator creates a new RecordingIndicator
func NewRecordingIndicator() *RecordingIndicator {
	return &RecordingIndicator{}
}

func (i *RecordingIndicator) SetLoading(loading bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.transitions = append(i.transitions, loading)
}

// Transitions returns the recorded values in order
func (i *RecordingIndicator) Transitions() []bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.transitions) == 0 {
		return nil
	}
	out := make([]bool, len(i.transitions))
	copy(out, i.transitions)
	return out
}

// Loading returns the last value set, false if never set
func (i *RecordingIndicator) Loading() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.transitions) == 0 {
		return false
	}
	return i.transitions[len(i.transitions)-1]
}
