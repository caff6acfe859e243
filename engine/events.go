package engine

// EventKind identifies a cross-thread control event (spec §4.10).
type EventKind int

const (
	BufferSizeChange EventKind = iota
	SampleRateChange
)

func (k EventKind) String() string {
	switch k {
	case BufferSizeChange:
		return "BufferSizeChange"
	case SampleRateChange:
		return "SampleRateChange"
	default:
		return "Unknown"
	}
}

// Event is a control-thread-to-audio-thread (and back) notification.
// Comparable by value so the queue can dedup identical consecutive
// events per spec §4.10.
type Event struct {
	Kind     EventKind
	UintArg  uint64
	FloatArg float64
}

// MaxEvents is the spec's ENGINE_MAX_EVENTS bound on the cross-thread
// queue's capacity.
const MaxEvents = 128

// EventQueue is the bounded MPMC queue spec §4.10 and §5 describe:
// producers (the control thread, or a backend callback reacting to a
// device change) push events; the audio thread checks Empty before
// starting a cycle; a single non-realtime pump drains it, collapsing
// runs of identical consecutive events into one handled call. A
// buffered channel gives the MPMC behavior for free — Go channels
// already guarantee FIFO delivery per sender under a single receiver,
// which is what spec §5 requires ("consumers see at least FIFO order").
type EventQueue struct {
	ch chan Event
}

// NewEventQueue allocates a queue capped at MaxEvents.
func NewEventQueue() *EventQueue {
	return &EventQueue{ch: make(chan Event, MaxEvents)}
}

// Push enqueues e. Returns false if the queue is full — the event is
// dropped rather than blocking a realtime caller.
func (q *EventQueue) Push(e Event) bool {
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

// Empty reports whether the queue currently holds no events — the
// audio thread's process() consults this before committing to a cycle
// (spec §4.10's pseudocode: "if ... ev_queue non-empty ... clear and
// return").
func (q *EventQueue) Empty() bool {
	return len(q.ch) == 0
}

// Drain dequeues every pending event, calling handle once per run of
// identical consecutive events, stopping at the first error handle
// returns. Meant for the single non-realtime event pump goroutine.
func (q *EventQueue) Drain(handle func(Event) error) error {
	var last Event
	first := true
	for {
		select {
		case e := <-q.ch:
			if first || e != last {
				if err := handle(e); err != nil {
					return err
				}
			}
			last, first = e, false
		default:
			return nil
		}
	}
}
