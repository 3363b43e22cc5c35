package ui

import (
	"image/color"

	"github.com/temoto/touchpanel/internal/types"
)

// Renderer is drawing surface shared by all screens, hardware/display.Display in production.
type Renderer interface {
	Width() int
	Height() int
	Clear(c color.RGBA)
	FillRect(x, y, w, h int, c color.RGBA)
	DrawRect(x, y, w, h int, c color.RGBA)
	FillRoundRect(x, y, w, h, r int, c color.RGBA)
	DrawRoundRect(x, y, w, h, r int, c color.RGBA)
	FillCircle(x, y, r int, c color.RGBA)
	Text(x, y int, s string, c color.RGBA, size int)
	TextWidth(s string, size int) int
	TextHeight(size int) int
	QR(x, y, size int, text string) error
	Flush() error
	// Transition announces visual effect, advisory only.
	Transition(kind types.TransitionKind)
}

// Receiver is consumer end of event queue.
type Receiver interface {
	TryReceive(*types.Event) bool
}

// Sender is producer end of event queue.
type Sender interface {
	TrySend(types.Event) bool
}

// Screen lifecycle driven by Manager, always on display goroutine:
// Init, Draw on becoming active, then Update/HandleEvent until OnExit.
// Embed BaseScreen to get no-op optional hooks.
type Screen interface {
	ID() types.ScreenID
	Init()
	Draw()
	Update()
	HandleEvent(types.Event)

	OnEnter()
	OnExit()
	CanTransitionTo(types.ScreenID) bool
	OnSwipeUp()
	OnSwipeDown()
	OnSwipeLeft()
	OnSwipeRight()

	NeedsRedraw() bool
}

type BaseScreen struct {
	needsRedraw bool
}

func (self *BaseScreen) Init()                               {}
func (self *BaseScreen) Update()                             {}
func (self *BaseScreen) HandleEvent(types.Event)             {}
func (self *BaseScreen) OnEnter()                            {}
func (self *BaseScreen) OnExit()                             {}
func (self *BaseScreen) CanTransitionTo(types.ScreenID) bool { return true }
func (self *BaseScreen) OnSwipeUp()                          {}
func (self *BaseScreen) OnSwipeDown()                        {}
func (self *BaseScreen) OnSwipeLeft()                        {}
func (self *BaseScreen) OnSwipeRight()                       {}

func (self *BaseScreen) NeedsRedraw() bool { return self.needsRedraw }

// SetNeedsRedraw requests Draw on next Manager.Update. Screen clears it in Draw.
func (self *BaseScreen) SetNeedsRedraw(v bool) { self.needsRedraw = v }
