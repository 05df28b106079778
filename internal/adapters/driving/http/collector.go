package http

import (
	"sync"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driving"
)

// Ensure Collector implements the presentation ports
var (
	_ driven.NotificationSink = (*Collector)(nil)
	_ driven.NavigationSink   = (*Collector)(nil)
	_ driven.LoadingIndicator = (*Collector)(nil)
)

// FlowBuilder builds a controller whose presentation side effects land in c
type FlowBuilder func(c *Collector) (driving.AuthFlowService, error)

// Collector gathers the presentation side effects of one request so they
// can be returned in the response body.
type Collector struct {
	mu            sync.Mutex
	notifications []domain.Notification
	navigateTo    domain.Route
	loaded        bool
	identity      *domain.Identity
	loginFailed   bool
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Notify implements driven.NotificationSink
func (c *Collector) Notify(kind domain.NotificationKind, key domain.MessageKey, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := domain.Notification{Kind: kind, Key: key}
	if err != nil {
		n.Error = err.Error()
	}
	c.notifications = append(c.notifications, n)
}

// NavigateTo implements driven.NavigationSink
func (c *Collector) NavigateTo(route domain.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigateTo = route
}

// SetLoading implements driven.LoadingIndicator
func (c *Collector) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if loading {
		c.loaded = true
	}
}

// Loaded reports whether the flow ever raised the loading indicator
func (c *Collector) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// OnLoginSuccess records the identity handed to the success callback
func (c *Collector) OnLoginSuccess(identity domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = &identity
}

// OnLoginFailure records that the failure callback ran
func (c *Collector) OnLoginFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginFailed = true
}

// Notifications returns a copy of the collected notifications
func (c *Collector) Notifications() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// NavigateToRoute returns the last navigation intent
func (c *Collector) NavigateToRoute() domain.Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.navigateTo
}

// Identity returns the identity passed to OnLoginSuccess, if any
func (c *Collector) Identity() *domain.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// LoginFailed reports whether OnLoginFailure ran
func (c *Collector) LoginFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginFailed
}
