package touchscreen

import (
	"sort"
	"strconv"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
	"github.com/temoto/touchpanel/helpers"
	"github.com/temoto/touchpanel/internal/touch"
	"github.com/temoto/touchpanel/log2"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

const XPT2046Tag = "xpt2046"

// Control byte: start bit, channel, 12 bit mode, differential reference, power down between conversions.
const (
	xptReadX  byte = 0xd0
	xptReadY  byte = 0x90
	xptReadZ1 byte = 0xb0

	xptSamples = 5
	// pressure below this is noise from a finger lifting off
	xptMinZ = 100
)

var DefaultSpiSpeed = 1 * physic.MegaHertz

type XPT2046Config struct {
	SpiBus   string
	SpiMode  int
	SpiSpeed string
	IrqChip  string
	IrqLine  string
}

type SpiTxFunc func(send, recv []byte) error

// XPT2046 talks to resistive touch controller directly over SPI.
// PENIRQ line (active low) gates conversions so idle polling costs one GPIO read.
type XPT2046 struct {
	Calibration touch.Calibration

	log        *log2.Log
	spiTx      SpiTxFunc
	pen        gpio.Lineser
	penLine    uint32
	spiPort    spi.PortCloser
	gpioChip   gpio.Chiper
	rawX, rawY int
	buf        [3]byte
}

var _ touch.Hardware = new(XPT2046)

func (self *XPT2046) String() string { return XPT2046Tag }

func NewXPT2046(c *XPT2046Config, cal touch.Calibration, log *log2.Log) (*XPT2046, error) {
	if err := cal.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	line, err := strconv.ParseUint(c.IrqLine, 10, 16)
	if err != nil {
		return nil, errors.Annotatef(err, "%s irq_line=%s must be number", XPT2046Tag, c.IrqLine)
	}

	if _, err = host.Init(); err != nil {
		return nil, errors.Annotate(err, "periph/init")
	}
	self := &XPT2046{Calibration: cal, log: log, penLine: uint32(line)}
	self.spiPort, err = spireg.Open(c.SpiBus)
	if err != nil {
		return nil, errors.Annotatef(err, "SPI Open bus=%s", c.SpiBus)
	}
	speed := DefaultSpiSpeed
	if c.SpiSpeed != "" {
		if err = speed.Set(c.SpiSpeed); err != nil {
			_ = self.Close()
			return nil, errors.Annotate(err, "SPI speed parse")
		}
	}
	conn, err := self.spiPort.Connect(speed, spi.Mode(c.SpiMode), 8)
	if err != nil {
		_ = self.Close()
		return nil, errors.Annotate(err, "SPI Connect")
	}
	self.spiTx = conn.Tx

	self.gpioChip, err = gpio.Open(c.IrqChip, "touchpanel")
	if err != nil {
		_ = self.Close()
		return nil, errors.Annotatef(err, "pen irq open chip=%s", c.IrqChip)
	}
	self.pen, err = self.gpioChip.OpenLines(gpio.GPIOHANDLE_REQUEST_INPUT, "touchpanel-pen", self.penLine)
	if err != nil {
		_ = self.Close()
		return nil, errors.Annotatef(err, "pen irq open line=%d", self.penLine)
	}
	return self, nil
}

// NewXPT2046Custom is for tests and boards with non-standard wiring.
func NewXPT2046Custom(tx SpiTxFunc, pen gpio.Lineser, penLine uint32, cal touch.Calibration, log *log2.Log) *XPT2046 {
	return &XPT2046{Calibration: cal, log: log, spiTx: tx, pen: pen, penLine: penLine}
}

func (self *XPT2046) Close() error {
	cs := make([]interface{ Close() error }, 0, 3)
	if self.pen != nil {
		cs = append(cs, self.pen)
	}
	if self.gpioChip != nil {
		cs = append(cs, self.gpioChip)
	}
	if self.spiPort != nil {
		cs = append(cs, self.spiPort)
	}
	return helpers.CloseAll(cs...)
}

func (self *XPT2046) PollTouch() (int, int, bool) {
	if !self.penDown() {
		return 0, 0, false
	}
	z, err := self.read(xptReadZ1)
	if err != nil {
		self.log.Errorf("%s z err=%v", XPT2046Tag, err)
		return 0, 0, false
	}
	if z < xptMinZ {
		return 0, 0, false
	}
	rx, errx := self.median(xptReadX)
	ry, erry := self.median(xptReadY)
	if err = helpers.FoldErrors([]error{errx, erry}); err != nil {
		self.log.Errorf("%s xy err=%v", XPT2046Tag, err)
		return 0, 0, false
	}
	// pen may have lifted during conversion
	if !self.penDown() {
		return 0, 0, false
	}
	self.rawX, self.rawY = rx, ry
	x, y := self.Calibration.Map(rx, ry)
	return x, y, true
}

func (self *XPT2046) PollRawTouch() (int, int) { return self.rawX, self.rawY }

func (self *XPT2046) penDown() bool {
	hd, err := self.pen.Read()
	if err != nil {
		self.log.Errorf("%s pen read err=%v", XPT2046Tag, err)
		return false
	}
	idx := 0
	for i, l := range self.pen.LineOffsets() {
		if l == self.penLine {
			idx = i
			break
		}
	}
	return hd.Values[idx] == 0
}

func (self *XPT2046) median(cmd byte) (int, error) {
	var vs [xptSamples]int
	for i := range vs {
		v, err := self.read(cmd)
		if err != nil {
			return 0, err
		}
		vs[i] = v
	}
	sort.Ints(vs[:])
	return vs[xptSamples/2], nil
}

// read returns 12 bit conversion result
func (self *XPT2046) read(cmd byte) (int, error) {
	send := [3]byte{cmd, 0, 0}
	if err := self.spiTx(send[:], self.buf[:]); err != nil {
		return 0, errors.Annotatef(err, "%s tx cmd=%02x", XPT2046Tag, cmd)
	}
	return (int(self.buf[1])<<8 | int(self.buf[2])) >> 3, nil
}
