package screens

import (
	"image/color"

	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	"github.com/temoto/touchpanel/internal/ui/widget"
)

const (
	menuButtonW = 130
	menuButtonH = 40
	menuCols    = 2
	menuRows    = 3
	menuGapY    = 12
)

type menuItem struct {
	text    string
	target  types.ScreenID
	normal  color.RGBA
	pressed color.RGBA
}

var menuItems = [menuCols * menuRows]menuItem{
	{"Standby", types.ScreenStandbySettings, widget.Slate, widget.SlateDark},
	{"Input", types.ScreenInputSettings, widget.Green, widget.GreenDark},
	{"Output", types.ScreenOutputSettings, widget.Orange, widget.OrangeDark},
	{"Time", types.ScreenTimeSettings, widget.Brown, widget.BrownDark},
	{"Log", types.ScreenLog, widget.Grey, widget.GreyMid},
	{"Device settings", types.ScreenSettings, widget.Blue, widget.BlueDark},
}

// Menu is 2x3 grid of buttons. Close or any swipe returns Home.
type Menu struct {
	base
}

func NewMenu(m *ui.Manager) *Menu {
	self := &Menu{base: newBase(m, types.ScreenMenu, "Menu")}
	r := m.Display()
	gapX := (r.Width() - menuCols*menuButtonW) / (menuCols + 1)
	if gapX < 10 {
		gapX = 10
	}
	gridH := menuRows*menuButtonH + (menuRows-1)*menuGapY
	startY := (r.Height() - gridH) / 2
	if startY < headerLineY {
		startY = headerLineY
	}
	for i, item := range menuItems {
		item := item
		x := gapX + (i%menuCols)*(menuButtonW+gapX)
		y := startY + (i/menuCols)*(menuButtonH+menuGapY)
		b := self.add(widget.NewButton(x, y, menuButtonW, menuButtonH, item.text, func() {
			self.navigate(item.target, types.TransitionSlideLeft)
		}))
		b.Style.Normal, b.Style.Pressed = item.normal, item.pressed
		b.Style.Radius = 10
		b.Style.ShadowOffset = 4
	}
	self.add(topRight(r, "Close", closeStyle(), self.home))
	return self
}

func (self *Menu) Init() { self.SetNeedsRedraw(true) }
func (self *Menu) Draw() { self.drawFrame() }

func (self *Menu) HandleEvent(e types.Event) { self.handleTouch(&e) }

func (self *Menu) OnSwipeUp()    { self.swipeHome() }
func (self *Menu) OnSwipeDown()  { self.swipeHome() }
func (self *Menu) OnSwipeLeft()  { self.swipeHome() }
func (self *Menu) OnSwipeRight() { self.swipeHome() }

func (self *Menu) swipeHome() {
	if self.swipeAllowed() {
		self.home()
	}
}

func (self *Menu) home() { self.navigate(types.ScreenHome, types.TransitionSlideDown) }
