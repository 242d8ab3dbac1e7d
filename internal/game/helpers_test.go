package game

import (
	"context"
	"sync"

	"github.com/scythe504/drawguess-backend/internal"
)

type sentEvent struct {
	To      string
	Room    string
	Except  string
	Event   string
	Payload any
}

// recordingTransport captures everything a session emits.
type recordingTransport struct {
	mu     sync.Mutex
	events []sentEvent
}

func (t *recordingTransport) SendToPlayer(playerID, event string, payload any) {
	t.record(sentEvent{To: playerID, Event: event, Payload: payload})
}

func (t *recordingTransport) SendToRoom(roomID, event string, payload any) {
	t.record(sentEvent{Room: roomID, Event: event, Payload: payload})
}

func (t *recordingTransport) SendToRoomExcept(roomID, senderID, event string, payload any) {
	t.record(sentEvent{Room: roomID, Except: senderID, Event: event, Payload: payload})
}

func (t *recordingTransport) record(e sentEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

// named returns every event of the given type, in emission order.
func (t *recordingTransport) named(event string) []sentEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []sentEvent
	for _, e := range t.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (t *recordingTransport) namedTo(playerID, event string) []sentEvent {
	var out []sentEvent
	for _, e := range t.named(event) {
		if e.To == playerID {
			out = append(out, e)
		}
	}
	return out
}

func (t *recordingTransport) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// flakyTransport panics the first time a room-wide event of the given type
// is sent.
type flakyTransport struct {
	*recordingTransport

	mu     sync.Mutex
	event  string
	failed bool
}

func (t *flakyTransport) SendToRoom(roomID, event string, payload any) {
	t.mu.Lock()
	fail := event == t.event && !t.failed
	if fail {
		t.failed = true
	}
	t.mu.Unlock()

	if fail {
		panic("send failed: " + event)
	}
	t.recordingTransport.SendToRoom(roomID, event, payload)
}

type recordingArchiver struct {
	mu      sync.Mutex
	results []internal.GameResult
}

func (a *recordingArchiver) SaveGameResult(_ context.Context, result internal.GameResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, result)
	return nil
}

func (a *recordingArchiver) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}
