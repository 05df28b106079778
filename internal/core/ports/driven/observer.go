package driven

import (
	"time"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
)

// FlowObserver receives flow telemetry. Implementations must be safe for
// concurrent use and must not block.
type FlowObserver interface {
	OutcomeEmitted(flow domain.Flow, outcome domain.FlowOutcome)
	FlowCompleted(flow domain.Flow, elapsed time.Duration)
}
