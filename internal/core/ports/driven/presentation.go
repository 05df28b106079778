package driven

import "github.com/custodia-labs/sercha-basicauth/internal/core/domain"

// NotificationSink presents flow outcomes to the user (toasts, console lines)
type NotificationSink interface {
	Notify(kind domain.NotificationKind, key domain.MessageKey, err error)
}

// NavigationSink receives navigation intents raised by flow outcomes
type NavigationSink interface {
	NavigateTo(route domain.Route)
}

// LoadingIndicator mirrors whether any flow is in flight
type LoadingIndicator interface {
	SetLoading(loading bool)
}
