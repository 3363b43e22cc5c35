package touchscreen

import (
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/inputevent-go"
	"github.com/temoto/touchpanel/internal/touch"
	"github.com/temoto/touchpanel/log2"
	"go.uber.org/atomic"
)

const EvdevTag = "evdev"

// linux/input-event-codes.h
const (
	evSyn     = 0x00
	evKey     = 0x01
	evAbs     = 0x03
	synReport = 0x00
	absX      = 0x00
	absY      = 0x01
	absMtX    = 0x35
	absMtY    = 0x36
	btnTouch  = 0x14a
)

// Evdev reads Linux input device (ads7846 and similar drivers) in its own goroutine.
// Complete reports are published through single atomic word, so PollTouch never blocks.
type Evdev struct {
	Calibration touch.Calibration

	r     io.ReadCloser
	log   *log2.Log
	alive *alive.Alive
	// packed contact, see packContact
	contact atomic.Uint64
	// raw of the last polled contact
	rawX, rawY int
}

var _ touch.Hardware = new(Evdev)

func (self *Evdev) String() string { return EvdevTag }

func NewEvdev(device string, cal touch.Calibration, log *log2.Log) (*Evdev, error) {
	if err := cal.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	f, err := os.Open(device)
	if err != nil {
		return nil, errors.Annotatef(err, "%s open device=%s", EvdevTag, device)
	}
	return NewEvdevReader(f, cal, log), nil
}

// NewEvdevReader starts reading input_event records from r until Close or read error.
func NewEvdevReader(r io.ReadCloser, cal touch.Calibration, log *log2.Log) *Evdev {
	self := &Evdev{
		Calibration: cal,
		r:           r,
		log:         log,
		alive:       alive.NewAlive(),
	}
	self.alive.Add(1)
	go self.readLoop()
	return self
}

func (self *Evdev) Close() error {
	self.alive.Stop()
	err := self.r.Close()
	self.alive.Wait()
	return errors.Annotate(err, EvdevTag)
}

// Done is closed when reader goroutine exits.
func (self *Evdev) Done() <-chan struct{} { return self.alive.WaitChan() }

func (self *Evdev) PollTouch() (int, int, bool) {
	rx, ry, present := unpackContact(self.contact.Load())
	if !present {
		return 0, 0, false
	}
	self.rawX, self.rawY = rx, ry
	x, y := self.Calibration.Map(rx, ry)
	return x, y, true
}

func (self *Evdev) PollRawTouch() (int, int) { return self.rawX, self.rawY }

func (self *Evdev) readLoop() {
	defer self.alive.Done()
	var x, y int32
	var pressed bool
	for self.alive.IsRunning() {
		ie, err := inputevent.ReadOne(self.r)
		if err != nil {
			if self.alive.IsRunning() {
				self.log.Errorf("%s read err=%v", EvdevTag, err)
				self.alive.Stop()
			}
			break
		}
		switch ie.Type {
		case evAbs:
			switch ie.Code {
			case absX, absMtX:
				x = ie.Value
			case absY, absMtY:
				y = ie.Value
			}
		case evKey:
			if ie.Code == btnTouch {
				pressed = ie.Value != int32(inputevent.KeyStateUp)
			}
		case evSyn:
			if ie.Code == synReport {
				self.contact.Store(packContact(int(x), int(y), pressed))
			}
		}
	}
	self.contact.Store(0)
}

// bit 63 present, x in 62..32, y in 31..0; negative readings clamp to 0
func packContact(x, y int, present bool) uint64 {
	if !present {
		return 0
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return 1<<63 | uint64(uint32(x)&0x7fffffff)<<32 | uint64(uint32(y))
}

func unpackContact(v uint64) (x, y int, present bool) {
	if v&(1<<63) == 0 {
		return 0, 0, false
	}
	return int(v >> 32 & 0x7fffffff), int(uint32(v)), true
}
