package types

import (
	"fmt"
)

type EventKind uint8

const (
	EventInvalid EventKind = iota
	EventTouchDown
	EventTouchMove
	EventTouchUp
	EventGestureSwipe
	EventScreenChange
)

var eventKindNames = [...]string{"Invalid", "TouchDown", "TouchMove", "TouchUp", "GestureSwipe", "ScreenChange"}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

type Direction uint8

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

var directionNames = [...]string{"None", "Up", "Down", "Left", "Right"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// Calibrated and raw controller coordinates of one contact sample.
type TouchEvent struct {
	X           int32
	Y           int32
	RawX        int32
	RawY        int32
	TimestampMs uint32
}

type GestureEvent struct {
	Direction  Direction
	StartX     int32
	StartY     int32
	EndX       int32
	EndY       int32
	DurationMs uint32
}

type ScreenChangeEvent struct {
	Target     ScreenID
	Transition TransitionKind
}

// Event is a plain value, copied whole through the queue.
// Kind selects which one of the payload fields is meaningful, others are zero.
type Event struct {
	Kind         EventKind
	Touch        TouchEvent
	Gesture      GestureEvent
	ScreenChange ScreenChangeEvent
}

func NewTouch(kind EventKind, x, y, rawX, rawY int32, ts uint32) Event {
	switch kind {
	case EventTouchDown, EventTouchMove, EventTouchUp:
	default:
		panic("code error NewTouch kind=" + kind.String())
	}
	return Event{Kind: kind, Touch: TouchEvent{X: x, Y: y, RawX: rawX, RawY: rawY, TimestampMs: ts}}
}

func NewSwipe(dir Direction, startX, startY, endX, endY int32, durationMs uint32) Event {
	return Event{Kind: EventGestureSwipe, Gesture: GestureEvent{
		Direction:  dir,
		StartX:     startX,
		StartY:     startY,
		EndX:       endX,
		EndY:       endY,
		DurationMs: durationMs,
	}}
}

func NewScreenChange(target ScreenID, transition TransitionKind) Event {
	return Event{Kind: EventScreenChange, ScreenChange: ScreenChangeEvent{Target: target, Transition: transition}}
}

func (e *Event) IsTouch() bool {
	return e.Kind == EventTouchDown || e.Kind == EventTouchMove || e.Kind == EventTouchUp
}

func (e *Event) String() string {
	inner := ""
	switch e.Kind {
	case EventTouchDown, EventTouchMove, EventTouchUp:
		t := &e.Touch
		inner = fmt.Sprintf(" x=%d y=%d raw=%d,%d t=%d", t.X, t.Y, t.RawX, t.RawY, t.TimestampMs)
	case EventGestureSwipe:
		g := &e.Gesture
		inner = fmt.Sprintf(" %s (%d,%d)->(%d,%d) %dms", g.Direction.String(), g.StartX, g.StartY, g.EndX, g.EndY, g.DurationMs)
	case EventScreenChange:
		inner = fmt.Sprintf(" target=%s transition=%s", e.ScreenChange.Target.String(), e.ScreenChange.Transition.String())
	}
	return fmt.Sprintf("Event(%s%s)", e.Kind.String(), inner)
}
