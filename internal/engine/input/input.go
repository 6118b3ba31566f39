// Package input handles SDL2 input events.
package input

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type EventType

	Key     sdl.Keycode
	KeyName string // SDL key name, matches configured key slots
	Repeat  bool   // true for OS auto-repeat of a held key

	Width  int
	Height int

	MouseX  int
	MouseY  int
	RelX    int
	RelY    int
	Button  uint8
	Buttons uint32 // held-button mask during motion
	WheelY  float32
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			ev := Event{
				Key:     e.Keysym.Sym,
				KeyName: sdl.GetKeyName(e.Keysym.Sym),
				Repeat:  e.Repeat != 0,
			}
			if e.Type == sdl.KEYDOWN {
				ev.Type = EventKeyDown
			} else if e.Type == sdl.KEYUP {
				ev.Type = EventKeyUp
			} else {
				continue
			}
			i.events = append(i.events, ev)

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:    EventMouseMove,
				MouseX:  int(e.X),
				MouseY:  int(e.Y),
				RelX:    int(e.XRel),
				RelY:    int(e.YRel),
				Buttons: e.State,
			})

		case *sdl.MouseButtonEvent:
			ev := Event{
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = EventMouseDown
			} else if e.Type == sdl.MOUSEBUTTONUP {
				ev.Type = EventMouseUp
			} else {
				continue
			}
			i.events = append(i.events, ev)

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseWheel,
				WheelY: float32(e.Y),
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(key sdl.Keycode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}

// LeftHeld reports whether the left button was held during a motion event.
func (e Event) LeftHeld() bool {
	return e.Buttons&sdl.ButtonLMask() != 0
}

// RightHeld reports whether the right button was held during a motion event.
func (e Event) RightHeld() bool {
	return e.Buttons&sdl.ButtonRMask() != 0
}

// ResolveKeyName validates a configured key name against SDL's key
// table. Returns an error naming the key when SDL does not know it.
func ResolveKeyName(name string) (sdl.Keycode, error) {
	code := sdl.GetKeyFromName(name)
	if code == sdl.K_UNKNOWN {
		return sdl.K_UNKNOWN, fmt.Errorf("unknown key name %q", name)
	}
	return code, nil
}

// CanonicalKeyName resolves a configured key name to the exact name SDL
// reports in keyboard events, so "l" and "L" both match the L key.
func CanonicalKeyName(name string) (string, error) {
	code, err := ResolveKeyName(name)
	if err != nil {
		return "", err
	}
	return sdl.GetKeyName(code), nil
}
