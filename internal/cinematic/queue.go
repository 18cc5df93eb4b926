package cinematic

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentext/simhost/internal/cinematic/keyframe"
)

// State is one of the queue state machine's states.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
	StateError   State = "error"
)

// transitions encodes state transition table; Stop is handled
// separately below since it is valid (and idempotent) from every state,
// including itself.
var transitions = map[State]map[State]bool{
	StateIdle:    {StateRunning: true, StateStopped: true},
	StateRunning: {StatePaused: true, StateStopped: true, StateIdle: true},
	StatePaused:  {StateRunning: true, StateStopped: true, StateIdle: true},
	StateStopped: {StateIdle: true, StateRunning: true},
	StateError:   {StateIdle: true, StateStopped: true},
}

// Capacity is the maximum number of queued (not yet started) movements
// a single Queue holds.
const Capacity = 10

// DefaultFPS is the frame rate used when generating keyframes for a newly
// started movement unless the caller overrides it.
const DefaultFPS = keyframe.DefaultFPS

// Apply is the camera-application closure the queue invokes each tick with
// the interpolated pose, decoupling the queue from any particular camera
// controller.
type Apply func(Pose)

// Queue is the cinematic engine for one extension: an ordered list of
// pending shots, at most one active movement, and the play/pause/stop
// state machine.
//
// Pause never detaches or rewinds the active movement: the active
// movement continues its current pass to completion, and pausing only
// stops the queue from starting the next movement once it finishes.
type Queue struct {
	mu sync.Mutex

	state   State
	pending []pending
	active  *Movement

	transformer keyframe.AssetTransformer
}

// New builds an empty Queue in the idle state.
func New(transformer keyframe.AssetTransformer) *Queue {
	return &Queue{state: StateIdle, transformer: transformer}
}

// AddMovement appends a queued shot if the queue has spare capacity.
// Returns the generated movement id.
func (q *Queue) AddMovement(operation string, params any) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= Capacity {
		return "", fmt.Errorf("cinematic queue is at capacity (%d)", Capacity)
	}
	id := uuid.New().String()
	q.pending = append(q.pending, pending{MovementID: id, Operation: operation, Params: params})
	return id, nil
}

// RemoveMovement removes a queued (never active) movement by id.
func (q *Queue) RemoveMovement(movementID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.pending {
		if p.MovementID == movementID {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("movement %q is not queued", movementID)
}

// Play transitions idle→running or stopped→running (both requiring a
// non-empty queue) or paused→running (resuming the paused movement as
// active).
func (q *Queue) Play() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !transitions[q.state][StateRunning] {
		return q.invalidTransition(StateRunning)
	}

	if q.state != StatePaused && len(q.pending) == 0 && q.active == nil {
		return fmt.Errorf("cannot play: queue is empty")
	}
	q.state = StateRunning
	return nil
}

// Pause transitions running→paused.
func (q *Queue) Pause() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !transitions[q.state][StatePaused] {
		return q.invalidTransition(StatePaused)
	}
	q.state = StatePaused
	return nil
}

// Stop transitions any state to stopped, clearing the queue and the active
// movement. It is idempotent: stop on an already-stopped
// queue succeeds and leaves the queue empty.
func (q *Queue) Stop() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = nil
	q.active = nil
	q.state = StateStopped
	return nil
}

func (q *Queue) invalidTransition(to State) error {
	return fmt.Errorf("invalid transition from %s to %s", q.state, to)
}

// Tick advances the engine by one update-tick: if running with no active
// movement, the front of the queue is started; the active movement (if
// any) is then advanced and, once complete,
// cleared. apply is invoked with the interpolated pose whenever there is
// an active movement, whether the state is running or paused.
func (q *Queue) Tick(now time.Time, fps float64, apply Apply) {
	q.mu.Lock()

	if q.state == StateRunning && q.active == nil && len(q.pending) > 0 {
		q.startNextLocked(now, fps)
	}

	active := q.active
	q.mu.Unlock()

	if active == nil {
		return
	}

	if active.Done(now) {
		last := active.Keyframes[len(active.Keyframes)-1]
		apply(Pose{Position: last.Position, Target: last.Target})
		q.mu.Lock()
		if q.active == active {
			q.active = nil
		}
		q.mu.Unlock()
		return
	}

	frame := active.frameAt(clamp01(active.Progress(now)))
	apply(Pose{Position: frame.Position, Target: frame.Target})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// startNextLocked pops the front of the queue, generates its keyframes,
// and makes it the active movement. On generation failure the movement is
// dropped and the queue transitions to error.
func (q *Queue) startNextLocked(now time.Time, fps float64) {
	next := q.pending[0]
	q.pending = q.pending[1:]

	params := withFPS(next.Params, fps, q.transformer)
	plan, err := keyframe.Generate(next.Operation, params)
	if err != nil {
		q.state = StateError
		return
	}

	q.active = &Movement{
		MovementID:      next.MovementID,
		Operation:       next.Operation,
		Params:          params,
		StartTime:       now,
		DurationSeconds: plan.Duration,
		Keyframes:       plan.Keyframes,
	}
}
