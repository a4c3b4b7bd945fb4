package session

import "sync"

// NoticeLevel grades a notice for presentation.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarn
	NoticeError
)

// Notice is a message surfaced to the user. Blocking notices expect
// acknowledgement in interactive frontends.
type Notice struct {
	Level    NoticeLevel
	Message  string
	Blocking bool
}

// Renderer receives presentation events. Calls are made while the machine
// lock is held; implementations must be quick and must not call back into the
// Machine.
type Renderer interface {
	Transition(prev State, snap Snapshot)
	Progress(percent int)
	Notice(n Notice)
}

type nopRenderer struct{}

func (nopRenderer) Transition(State, Snapshot) {}
func (nopRenderer) Progress(int)               {}
func (nopRenderer) Notice(Notice)              {}

// Event is one recorded presentation call.
type Event struct {
	Kind     string // transition, progress, notice
	From     State
	Snapshot Snapshot
	Percent  int
	Notice   Notice
}

// RecordingRenderer keeps every event in memory. It backs tests and the
// non-interactive frontends that only print the final outcome.
type RecordingRenderer struct {
	mu     sync.Mutex
	events []Event
}

func (r *RecordingRenderer) Transition(prev State, snap Snapshot) {
	r.append(Event{Kind: "transition", From: prev, Snapshot: snap})
}

func (r *RecordingRenderer) Progress(percent int) {
	r.append(Event{Kind: "progress", Percent: percent})
}

func (r *RecordingRenderer) Notice(n Notice) {
	r.append(Event{Kind: "notice", Notice: n})
}

func (r *RecordingRenderer) append(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *RecordingRenderer) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Progresses returns the recorded progress values in order.
func (r *RecordingRenderer) Progresses() []int {
	var out []int
	for _, ev := range r.Events() {
		if ev.Kind == "progress" {
			out = append(out, ev.Percent)
		}
	}
	return out
}

// States returns the target state of each recorded transition in order.
func (r *RecordingRenderer) States() []State {
	var out []State
	for _, ev := range r.Events() {
		if ev.Kind == "transition" {
			out = append(out, ev.Snapshot.State)
		}
	}
	return out
}

// Notices returns the recorded notices in order.
func (r *RecordingRenderer) Notices() []Notice {
	var out []Notice
	for _, ev := range r.Events() {
		if ev.Kind == "notice" {
			out = append(out, ev.Notice)
		}
	}
	return out
}
