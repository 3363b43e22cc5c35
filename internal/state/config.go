package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/touchpanel/hardware/touchscreen"
	"github.com/temoto/touchpanel/helpers"
	"github.com/temoto/touchpanel/internal/touch"
	ui_config "github.com/temoto/touchpanel/internal/ui/config"
	"github.com/temoto/touchpanel/log2"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Hardware struct {
		Touch struct { //nolint:maligned
			Driver      string            `hcl:"driver"`
			Device      string            `hcl:"device"`
			Spi         string            `hcl:"spi"`
			SpiMode     int               `hcl:"spi_mode"`
			SpiSpeed    string            `hcl:"spi_speed"`
			IrqChip     string            `hcl:"irq_chip"`
			IrqLine     string            `hcl:"irq_line"`
			LogDebug    bool              `hcl:"log_debug"`
			Calibration CalibrationConfig `hcl:"calibration"`
		} `hcl:"touch"`
		Display struct {
			Framebuffer string `hcl:"framebuffer"`
			Width       int    `hcl:"width"`
			Height      int    `hcl:"height"`
		} `hcl:"display"`
	} `hcl:"hardware"`

	Touch struct {
		MoveThreshold  int `hcl:"move_threshold"`
		SwipeThreshold int `hcl:"swipe_threshold"`
		PeriodMs       int `hcl:"period_ms"`
		QueueSize      int `hcl:"queue_size"`
	} `hcl:"touch"`

	UI ui_config.Config `hcl:"ui"`

	Log struct {
		Debug bool `hcl:"debug"`
	} `hcl:"log"`

	_copy_guard sync.Mutex //nolint:unused
}

// CalibrationConfig is touch.Calibration minus screen size, which comes from display.
// Zero raw ranges mean controller defaults.
type CalibrationConfig struct {
	RawMinX int  `hcl:"raw_min_x"`
	RawMaxX int  `hcl:"raw_max_x"`
	RawMinY int  `hcl:"raw_min_y"`
	RawMaxY int  `hcl:"raw_max_y"`
	SwapXY  bool `hcl:"swap_xy"`
	InvertX bool `hcl:"invert_x"`
	InvertY bool `hcl:"invert_y"`
}

func (self *CalibrationConfig) Calibration(width, height int) touch.Calibration {
	c := touch.DefaultCalibration()
	if self.RawMinX != 0 || self.RawMaxX != 0 {
		c.RawMinX, c.RawMaxX = self.RawMinX, self.RawMaxX
	}
	if self.RawMinY != 0 || self.RawMaxY != 0 {
		c.RawMinY, c.RawMaxY = self.RawMinY, self.RawMaxY
	}
	c.SwapXY, c.InvertX, c.InvertY = self.SwapXY, self.InvertX, self.InvertY
	c.Width, c.Height = width, height
	return c
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

const (
	DefaultDisplayWidth  = 320
	DefaultDisplayHeight = 240
	DefaultQueueSize     = 32
	DefaultSwipeMaxMs    = 500
	DefaultLogLines      = 100
)

// applyDefaults fills zero values, returns problems that are not fatal alone.
func (c *Config) applyDefaults(log *log2.Log) []error {
	errs := make([]error, 0)
	if c.Hardware.Touch.Driver == "" {
		c.Hardware.Touch.Driver = touchscreen.DriverMock
		log.Errorf("config: hardware.touch.driver is not set, using %s", c.Hardware.Touch.Driver)
	}
	if c.Hardware.Display.Width <= 0 {
		c.Hardware.Display.Width = DefaultDisplayWidth
	}
	if c.Hardware.Display.Height <= 0 {
		c.Hardware.Display.Height = DefaultDisplayHeight
	}
	if c.Touch.MoveThreshold <= 0 {
		c.Touch.MoveThreshold = touch.DefaultMoveThreshold
	}
	if c.Touch.SwipeThreshold <= 0 {
		c.Touch.SwipeThreshold = touch.DefaultSwipeThreshold
	}
	if c.Touch.QueueSize == 0 {
		c.Touch.QueueSize = DefaultQueueSize
	} else if c.Touch.QueueSize < 0 {
		errs = append(errs, errors.NotValidf("config: touch.queue_size=%d", c.Touch.QueueSize))
	}
	if c.UI.SwipeMaxMs == 0 {
		c.UI.SwipeMaxMs = DefaultSwipeMaxMs
	}
	if c.UI.Log.Lines <= 0 {
		c.UI.Log.Lines = DefaultLogLines
	}
	return errs
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
			return
		}
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		if err := osfs.SetBase(dir); err != nil {
			return nil, errors.Annotate(err, "config")
		}
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
