package mocks

import (
	"sync"
	"time"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

var _ driven.FlowObserver = (*RecordingObserver)(nil)

// RecordingObserver records emitted outcomes and completed flows
type RecordingObserver struct {
	mu        sync.Mutex
	outcomes  []domain.OutcomeKind
	completed []domain.Flow
}

// NewRecordingObserver creates a new RecordingObserver
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

func (o *RecordingObserver) OutcomeEmitted(_ domain.Flow, outcome domain.FlowOutcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome.Kind)
}

func (o *RecordingObserver) FlowCompleted(flow domain.Flow, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, flow)
}

// Outcomes returns the recorded outcome kinds in order
func (o *RecordingObserver) Outcomes() []domain.OutcomeKind {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.OutcomeKind(nil), o.outcomes...)
}

// Completed returns the flows that finished, in order
func (o *RecordingObserver) Completed() []domain.Flow {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.Flow(nil), o.completed...)
}
