package navigation

import (
	"math"
	"time"

	"github.com/abhisek/intervu/internal/stream"
)

// Phase is the state of the navigation machine.
type Phase int

const (
	Idle Phase = iota
	Dragging
	CommittingForward
	CommittingBackward
	Returning
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case CommittingForward:
		return "committing-forward"
	case CommittingBackward:
		return "committing-backward"
	case Returning:
		return "returning"
	}
	return "unknown"
}

// Direction of a committed or pending transition.
type Direction int

const (
	None Direction = iota
	Forward
	Backward
)

// Config holds the gesture tunables. Distances are in terminal cells.
type Config struct {
	// DistanceThreshold is the minimum drag distance that commits a swipe.
	DistanceThreshold float64

	// VelocityThreshold is the minimum release speed, in cells per second,
	// that commits a swipe regardless of distance.
	VelocityThreshold float64

	// MaxDragFraction caps the visual drag offset as a fraction of the
	// viewport width.
	MaxDragFraction float64

	// SettleDelay is how long a commit or return takes to resolve.
	SettleDelay time.Duration

	// PreloadThreshold is the number of unseen records below which more
	// are requested.
	PreloadThreshold int
}

// DefaultConfig returns the tunables used by the review screen.
func DefaultConfig() Config {
	return Config{
		DistanceThreshold: 8,
		VelocityThreshold: 60,
		MaxDragFraction:   0.4,
		SettleDelay:       180 * time.Millisecond,
		PreloadThreshold:  3,
	}
}

// Queue is the read side of the stream controller.
type Queue interface {
	Len() int
	Fetch() stream.FetchState
	Record(i int) (stream.Record, bool)
}

// State is a read-only snapshot of the machine.
type State struct {
	// ActiveIndex is meaningful only when HasActive is true.
	ActiveIndex int
	HasActive   bool

	Phase            Phase
	DragOffset       float64
	PendingDirection Direction
}

// EventKind identifies a notification for the hosting surface.
type EventKind int

const (
	// EventAdvanced reports a committed forward step to Index.
	EventAdvanced EventKind = iota + 1

	// EventRetreated reports a committed backward step to Index.
	EventRetreated

	// EventSettle asks the host to call Settle(Token) after Delay.
	EventSettle

	// EventPreload asks the host to request more records.
	EventPreload

	// EventAwaitingMore reports a forward attempt on the last record while
	// more records may still arrive.
	EventAwaitingMore

	// EventExhausted reports that forward motion past the last record is
	// permanently disabled. It is emitted once per session.
	EventExhausted
)

// Event is emitted by machine transitions.
type Event struct {
	Kind  EventKind
	Index int
	Token uint64
	Delay time.Duration
}

type sample struct {
	x float64
	t time.Time
}

// Machine turns gestures and explicit commands into single-step index
// changes over a Queue. Like the controller it runs on the event loop only.
type Machine struct {
	cfg   Config
	queue Queue

	state    State
	viewport float64

	start sample
	prev  sample
	last  sample

	token uint64

	// preloadMarker is the queue length when the last preload fired.
	preloadMarker     int
	exhaustedNotified bool
}

// New creates a machine reading from queue.
func New(queue Queue, cfg Config) *Machine {
	m := &Machine{cfg: cfg, queue: queue}
	m.Reset()
	return m
}

// Reset returns to the first record. It is called whenever the queue is
// replaced wholesale, and re-arms the preload and exhausted markers.
func (m *Machine) Reset() {
	m.token++
	m.state = State{HasActive: m.queue.Len() > 0}
	m.preloadMarker = -1
	m.exhaustedNotified = false
}

// SetViewport sets the width used to clamp the drag offset. Zero disables
// clamping.
func (m *Machine) SetViewport(width int) {
	m.viewport = float64(width)
}

// State returns a snapshot of the machine.
func (m *Machine) State() State { return m.state }

// Config returns the tunables.
func (m *Machine) Config() Config { return m.cfg }

// ActiveID returns the id of the active record, or "" when there is none.
func (m *Machine) ActiveID() string {
	if !m.state.HasActive {
		return ""
	}
	r, ok := m.queue.Record(m.state.ActiveIndex)
	if !ok {
		return ""
	}
	return r.ID
}

// QueueChanged is called after records were appended. It activates the first
// record if the queue was empty.
func (m *Machine) QueueChanged() {
	if !m.state.HasActive && m.queue.Len() > 0 {
		m.state.HasActive = true
		m.state.ActiveIndex = 0
	}
}

// CanGoPrevious reports whether a backward step would be accepted.
func (m *Machine) CanGoPrevious() bool {
	return m.state.HasActive && m.state.ActiveIndex > 0
}

// CanGoNext reports whether a forward step would be accepted now.
func (m *Machine) CanGoNext() bool {
	return m.state.HasActive && m.state.ActiveIndex+1 < m.queue.Len()
}

// Loading reports the sub-state where the active record is the last one (or
// there is none) and more may still arrive.
func (m *Machine) Loading() bool {
	if m.queue.Fetch().Exhausted {
		return false
	}
	return !m.state.HasActive || m.state.ActiveIndex == m.queue.Len()-1
}

// AtEnd reports that the active record is the last one and the stream is
// exhausted.
func (m *Machine) AtEnd() bool {
	return m.state.HasActive && m.queue.Fetch().Exhausted && m.state.ActiveIndex == m.queue.Len()-1
}

// GestureStart begins a drag. It is ignored unless the machine is idle.
func (m *Machine) GestureStart(x float64, t time.Time) {
	if m.state.Phase != Idle || !m.state.HasActive {
		return
	}
	s := sample{x: x, t: t}
	m.start, m.prev, m.last = s, s, s
	m.state.Phase = Dragging
	m.state.DragOffset = 0
	m.state.PendingDirection = None
}

// GestureMove tracks an in-progress drag.
func (m *Machine) GestureMove(x float64, t time.Time) {
	if m.state.Phase != Dragging {
		return
	}
	m.track(x, t)
}

// GestureEnd classifies the finished drag and either commits a step or
// returns to rest.
func (m *Machine) GestureEnd(x float64, t time.Time) []Event {
	if m.state.Phase != Dragging {
		return nil
	}
	m.track(x, t)

	delta := m.last.x - m.start.x
	velocity := m.velocity()

	dir := None
	switch {
	case math.Abs(delta) >= m.cfg.DistanceThreshold:
		dir = directionOf(delta)
		if math.Abs(velocity) >= m.cfg.VelocityThreshold && directionOf(velocity) != dir {
			// Flicked back against the drag.
			dir = None
		}
	case math.Abs(velocity) >= m.cfg.VelocityThreshold:
		dir = directionOf(velocity)
	}

	if dir == None {
		return m.toReturning()
	}
	return m.commit(dir)
}

// GestureCancel abandons a drag without committing.
func (m *Machine) GestureCancel() []Event {
	if m.state.Phase != Dragging {
		return nil
	}
	return m.toReturning()
}

// GoNext is a programmatic forward step. It is ignored unless idle.
func (m *Machine) GoNext() []Event {
	if m.state.Phase != Idle || !m.state.HasActive {
		return nil
	}
	return m.commit(Forward)
}

// GoPrevious is a programmatic backward step. It is ignored unless idle.
func (m *Machine) GoPrevious() []Event {
	if m.state.Phase != Idle || !m.state.HasActive {
		return nil
	}
	return m.commit(Backward)
}

// Settle resolves a transient phase. Tokens from superseded transitions are
// ignored.
func (m *Machine) Settle(token uint64) []Event {
	if token != m.token {
		return nil
	}
	var events []Event
	switch m.state.Phase {
	case CommittingForward:
		m.state.ActiveIndex++
		events = append(events, Event{Kind: EventAdvanced, Index: m.state.ActiveIndex})
		events = append(events, m.maybePreload()...)
	case CommittingBackward:
		m.state.ActiveIndex--
		events = append(events, Event{Kind: EventRetreated, Index: m.state.ActiveIndex})
	case Returning:
	default:
		return nil
	}
	m.state.Phase = Idle
	m.state.DragOffset = 0
	m.state.PendingDirection = None
	return events
}

func (m *Machine) commit(dir Direction) []Event {
	fetch := m.queue.Fetch()

	if dir == Backward {
		if m.state.ActiveIndex == 0 {
			return m.reject(nil)
		}
		return m.begin(CommittingBackward, Backward)
	}

	if m.state.ActiveIndex+1 < m.queue.Len() {
		return m.begin(CommittingForward, Forward)
	}
	if fetch.Exhausted {
		var events []Event
		if !m.exhaustedNotified {
			m.exhaustedNotified = true
			events = append(events, Event{Kind: EventExhausted, Index: m.state.ActiveIndex})
		}
		return m.reject(events)
	}
	events := []Event{{Kind: EventAwaitingMore, Index: m.state.ActiveIndex}}
	events = append(events, m.maybePreload()...)
	return m.reject(events)
}

// reject rubber-bands a drag back to rest. Programmatic steps have nothing to
// animate and stay idle.
func (m *Machine) reject(events []Event) []Event {
	if m.state.Phase == Dragging {
		return append(events, m.toReturning()...)
	}
	return events
}

func (m *Machine) begin(phase Phase, dir Direction) []Event {
	m.state.Phase = phase
	m.state.PendingDirection = dir
	return []Event{m.schedule()}
}

func (m *Machine) toReturning() []Event {
	m.state.Phase = Returning
	m.state.PendingDirection = None
	return []Event{m.schedule()}
}

func (m *Machine) schedule() Event {
	m.token++
	return Event{Kind: EventSettle, Token: m.token, Delay: m.cfg.SettleDelay}
}

// maybePreload fires once per queue length when the unseen remainder drops
// below the threshold.
func (m *Machine) maybePreload() []Event {
	n := m.queue.Len()
	if n-m.state.ActiveIndex-1 >= m.cfg.PreloadThreshold {
		return nil
	}
	fetch := m.queue.Fetch()
	if fetch.InFlight || fetch.Exhausted || m.preloadMarker == n {
		return nil
	}
	m.preloadMarker = n
	return []Event{{Kind: EventPreload, Index: m.state.ActiveIndex}}
}

func (m *Machine) track(x float64, t time.Time) {
	if t.After(m.last.t) {
		m.prev = m.last
	}
	m.last = sample{x: x, t: t}

	offset := x - m.start.x
	if m.viewport > 0 && m.cfg.MaxDragFraction > 0 {
		limit := m.viewport * m.cfg.MaxDragFraction
		offset = math.Max(-limit, math.Min(limit, offset))
	}
	m.state.DragOffset = offset
}

// velocity is the speed over the last sampled segment, in cells per second.
func (m *Machine) velocity() float64 {
	dt := m.last.t.Sub(m.prev.t).Seconds()
	if dt <= 0 {
		return 0
	}
	return (m.last.x - m.prev.x) / dt
}

// directionOf maps motion to a direction. Dragging left moves forward.
func directionOf(v float64) Direction {
	switch {
	case v < 0:
		return Forward
	case v > 0:
		return Backward
	}
	return None
}
