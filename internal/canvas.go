package internal

import "encoding/json"

// DrawEvent is an opaque drawing instruction relayed from the drawer. The
// server stores and forwards it without interpreting it.
type DrawEvent = json.RawMessage

// CanvasLog keeps the drawing events of the current round so late joiners
// can replay the canvas and finished rounds can be archived.
type CanvasLog struct {
	events []DrawEvent
}

func (c *CanvasLog) Append(event DrawEvent) {
	// Copy so a reused read buffer can't mutate history.
	cp := make(DrawEvent, len(event))
	copy(cp, event)
	c.events = append(c.events, cp)
}

func (c *CanvasLog) Clear() {
	c.events = nil
}

func (c *CanvasLog) Len() int {
	return len(c.events)
}

// Snapshot returns a copy of the log that stays valid after Clear.
func (c *CanvasLog) Snapshot() []DrawEvent {
	out := make([]DrawEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c CanvasLog) MarshalJSON() ([]byte, error) {
	if c.events == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.events)
}
