package crossval

import "sync"

// EventType is the type of event being reported to an observer.
type EventType uint8

const (
	// RunStarted is sent before the first fold of a run.
	RunStarted EventType = iota
	// FoldCompleted carries the score of a fold.
	FoldCompleted
	// FoldFailed carries the error of a fold.
	FoldFailed
	// RunCompleted carries the merged score of a run.
	RunCompleted
	// RunSkipped is sent when every fold of a run failed and the run is dropped.
	RunSkipped
	// LockAcquired is sent once the model has been locked.
	LockAcquired
	// LockReleased is sent once the model has been unlocked.
	LockReleased
	// LockUnsupported is sent when autolock was requested for a model that cannot be locked.
	LockUnsupported
)

var eventNames = [...]string{
	RunStarted:      "RunStarted",
	FoldCompleted:   "FoldCompleted",
	FoldFailed:      "FoldFailed",
	RunCompleted:    "RunCompleted",
	RunSkipped:      "RunSkipped",
	LockAcquired:    "LockAcquired",
	LockReleased:    "LockReleased",
	LockUnsupported: "LockUnsupported",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "EventType(?)"
}

// Event is something that happened during an evaluation. Fold is -1 for events about a whole run,
// and Run is -1 for events about the whole evaluation.
type Event struct {
	Type  EventType
	Run   int
	Fold  int
	Score float64
	Err   error
}

// Observer receives the events of an evaluation. Calls are never concurrent.
type Observer func(Event)

// serialised makes an observer safe to call from many goroutines.
func (o Observer) serialised() Observer {
	if o == nil {
		return func(Event) {}
	}
	var mu sync.Mutex
	return func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		o(e)
	}
}
