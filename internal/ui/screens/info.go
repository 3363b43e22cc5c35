package screens

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	ui_config "github.com/temoto/touchpanel/internal/ui/config"
	"github.com/temoto/touchpanel/internal/ui/widget"
)

const (
	infoLineHeight = 20
	infoQRSize     = 90
	infoRefresh    = time.Second
)

// Info shows build and runtime facts with QR code of build identity.
type Info struct {
	base
	info *ui_config.Config
	now  func() time.Time

	hostname    string
	heapKB      uint64
	lastRefresh time.Time
}

func NewInfo(m *ui.Manager, c *ui_config.Config, now func() time.Time) *Info {
	self := &Info{
		base: newBase(m, types.ScreenInfo, "System info"),
		info: c,
		now:  now,
	}
	self.add(topRight(m.Display(), "Back", backStyle(), self.back))
	return self
}

func (self *Info) Init() {
	self.hostname, _ = os.Hostname()
	self.heapKB = heapKB()
	self.lastRefresh = self.now()
}

// Lines is label/value pairs in display order.
func (self *Info) Lines() [][2]string {
	i := &self.info.Info
	return [][2]string{
		{"Board", orUnknown(i.Board)},
		{"Product", orUnknown(i.Product)},
		{"Version", orUnknown(i.Version)},
		{"Build", orUnknown(i.Build)},
		{"Host", orUnknown(self.hostname)},
		{"Runtime", runtime.Version() + " " + runtime.GOARCH},
		{"Heap", fmt.Sprintf("%d KB", self.heapKB)},
	}
}

// QRText identifies build, scanned by service staff.
func (self *Info) QRText() string {
	i := &self.info.Info
	return strings.Join([]string{orUnknown(i.Product), orUnknown(i.Version), orUnknown(i.Build), orUnknown(i.Board)}, " ")
}

func (self *Info) Draw() {
	r := self.drawFrame()
	y := 70
	for _, line := range self.Lines() {
		r.Text(10, y, line[0]+":", widget.Cyan, 1)
		r.Text(80, y, line[1], widget.White, 1)
		y += infoLineHeight
	}
	if err := r.QR(r.Width()-infoQRSize-10, 70, infoQRSize, self.QRText()); err != nil {
		self.log.Error(errors.Annotate(err, "info QR"))
	}
}

func (self *Info) Update() {
	now := self.now()
	if now.Sub(self.lastRefresh) < infoRefresh {
		return
	}
	self.lastRefresh = now
	if kb := heapKB(); kb != self.heapKB {
		self.heapKB = kb
		self.SetNeedsRedraw(true)
	}
}

func (self *Info) HandleEvent(e types.Event) { self.handleTouch(&e) }

func (self *Info) OnSwipeUp()    { self.swipeBack() }
func (self *Info) OnSwipeDown()  { self.swipeBack() }
func (self *Info) OnSwipeLeft()  { self.swipeBack() }
func (self *Info) OnSwipeRight() { self.swipeBack() }

func (self *Info) swipeBack() {
	if self.swipeAllowed() {
		self.back()
	}
}

func (self *Info) back() { self.navigate(types.ScreenSettings, types.TransitionSlideRight) }

func heapKB() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc / 1024
}

func orUnknown(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
