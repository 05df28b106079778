package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Ensure the sinks implement the presentation ports
var (
	_ driven.NotificationSink = (*Notifier)(nil)
	_ driven.NavigationSink   = (*Navigator)(nil)
	_ driven.LoadingIndicator = (*Indicator)(nil)
)

// Notifier prints one line per notification
type Notifier struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	errors  int
}

// NewNotifier creates a notifier writing to w.
// In verbose mode the underlying error is appended to error lines.
func NewNotifier(w io.Writer, verbose bool) *Notifier {
	return &Notifier{w: w, verbose: verbose}
}

// Notify implements driven.NotificationSink
func (n *Notifier) Notify(kind domain.NotificationKind, key domain.MessageKey, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if kind == domain.NotifyError {
		n.errors++
	}
	line := fmt.Sprintf("[%s] %s", kind, Message(key))
	if err != nil && n.verbose {
		line += " (" + err.Error() + ")"
	}
	fmt.Fprintln(n.w, line)
}

// ErrorCount returns how many error notifications were printed
func (n *Notifier) ErrorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.errors
}

// Navigator prints navigation intents and remembers the last one
type Navigator struct {
	mu   sync.Mutex
	w    io.Writer
	last domain.Route
}

// NewNavigator creates a navigator writing to w
func NewNavigator(w io.Writer) *Navigator {
	return &Navigator{w: w}
}

// NavigateTo implements driven.NavigationSink
func (n *Navigator) NavigateTo(route domain.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = route
	fmt.Fprintf(n.w, "next: %s\n", route)
}

// LastRoute returns the most recent navigation intent
func (n *Navigator) LastRoute() domain.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// Indicator prints a progress line while a flow is in flight
type Indicator struct {
	mu      sync.Mutex
	w       io.Writer
	loading bool
}

// NewIndicator creates an indicator writing to w
func NewIndicator(w io.Writer) *Indicator {
	return &Indicator{w: w}
}

// SetLoading implements driven.LoadingIndicator
func (i *Indicator) SetLoading(loading bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if loading && !i.loading {
		fmt.Fprintln(i.w, "working...")
	}
	i.loading = loading
}

// Loading reports the current state
func (i *Indicator) Loading() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.loading
}
