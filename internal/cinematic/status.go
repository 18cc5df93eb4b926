package cinematic

import (
	"time"

	"github.com/agentext/simhost/internal/cinematic/keyframe"
)

// ActiveStatus describes the currently active movement, if any.
type ActiveStatus struct {
	MovementID       string  `json:"movement_id"`
	Operation        string  `json:"operation"`
	Progress         float64 `json:"progress"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// QueuedStatus describes one pending (not yet started) movement.
type QueuedStatus struct {
	MovementID           string  `json:"movement_id"`
	Operation            string  `json:"operation"`
	EstimatedDuration    float64 `json:"estimated_duration_seconds"`
	EstimatedStartOffset float64 `json:"estimated_start_offset_seconds"`
}

// Status is the full response to get_status:
// effective state, the active shot with progress/remaining time, the
// queued shots with estimated start times, and total remaining duration.
type Status struct {
	State                  State          `json:"state"`
	Active                 *ActiveStatus  `json:"active,omitempty"`
	Queued                 []QueuedStatus `json:"queued"`
	TotalRemainingDuration float64        `json:"total_remaining_duration_seconds"`
}

// GetStatus reports the queue's effective state and shot-level detail.
// The stored state is refined for reporting: idle with items queued reads
// as pending, running with nothing left reads as idle.
func (q *Queue) GetStatus(now time.Time, fps float64) Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	status := Status{State: q.effectiveStateLocked(), Queued: []QueuedStatus{}}

	total := 0.0
	if q.active != nil {
		remaining := q.active.RemainingSeconds(now)
		status.Active = &ActiveStatus{
			MovementID:       q.active.MovementID,
			Operation:        q.active.Operation,
			Progress:         clamp01(q.active.Progress(now)),
			RemainingSeconds: remaining,
		}
		total += remaining
	}

	offset := total
	for _, p := range q.pending {
		estimated := estimateDuration(p.Operation, withFPS(p.Params, fps, q.transformer))
		status.Queued = append(status.Queued, QueuedStatus{
			MovementID:           p.MovementID,
			Operation:            p.Operation,
			EstimatedDuration:    estimated,
			EstimatedStartOffset: offset,
		})
		offset += estimated
		total += estimated
	}

	status.TotalRemainingDuration = total
	return status
}

// effectiveStateLocked implements "Effective state inference": the
// stored state is running/paused/stopped/idle; get_status additionally
// reports "pending" when idle with items queued, and "idle" when running
// with nothing left to do.
func (q *Queue) effectiveStateLocked() State {
	switch q.state {
	case StateIdle:
		if len(q.pending) > 0 {
			return "pending"
		}
		return StateIdle
	case StateRunning:
		if q.active == nil && len(q.pending) == 0 {
			return StateIdle
		}
		return StateRunning
	default:
		return q.state
	}
}

// estimateDuration computes what a queued shot's duration would be if it
// started now, using the same generator the Queue will eventually run, so
// the estimate always matches the real start. The generated keyframes are
// discarded; this is only used for status reporting.
func estimateDuration(operation string, params any) float64 {
	plan, err := keyframe.Generate(operation, params)
	if err != nil {
		return 0
	}
	return plan.Duration
}
