package touch

import (
	"fmt"
	"math"

	"github.com/juju/errors"
)

// Calibration maps raw controller readings to screen pixels.
// With SwapXY raw axes are exchanged first, so RawMinX/RawMaxX always
// describe the raw axis that ends up as screen X.
type Calibration struct {
	RawMinX int
	RawMaxX int
	RawMinY int
	RawMaxY int
	Width   int
	Height  int
	SwapXY  bool
	InvertX bool
	InvertY bool
}

// DefaultCalibration fits a typical XPT2046 12 bit reading on a 240x320 portrait panel.
func DefaultCalibration() Calibration {
	return Calibration{
		RawMinX: 200,
		RawMaxX: 3900,
		RawMinY: 200,
		RawMaxY: 3900,
		Width:   240,
		Height:  320,
	}
}

func (c Calibration) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.NotValidf("calibration screen size=%dx%d", c.Width, c.Height)
	}
	if c.RawMinX == c.RawMaxX {
		return errors.NotValidf("calibration raw x range=%d..%d", c.RawMinX, c.RawMaxX)
	}
	if c.RawMinY == c.RawMaxY {
		return errors.NotValidf("calibration raw y range=%d..%d", c.RawMinY, c.RawMaxY)
	}
	return nil
}

// HCL renders calibration block for hardware.touch config section.
func (c Calibration) HCL() string {
	return fmt.Sprintf(`calibration {
  raw_min_x = %d
  raw_max_x = %d
  raw_min_y = %d
  raw_max_y = %d
  swap_xy = %t
  invert_x = %t
  invert_y = %t
}
`, c.RawMinX, c.RawMaxX, c.RawMinY, c.RawMaxY, c.SwapXY, c.InvertX, c.InvertY)
}

// Map result is clamped to screen bounds.
func (c Calibration) Map(rawX, rawY int) (x, y int) {
	if c.SwapXY {
		rawX, rawY = rawY, rawX
	}
	x = scale(rawX, c.RawMinX, c.RawMaxX, c.Width)
	y = scale(rawY, c.RawMinY, c.RawMaxY, c.Height)
	if c.InvertX {
		x = c.Width - 1 - x
	}
	if c.InvertY {
		y = c.Height - 1 - y
	}
	return x, y
}

// Unmap is inverse of Map, used to synthesize controller readings.
func (c Calibration) Unmap(x, y int) (rawX, rawY int) {
	if c.InvertX {
		x = c.Width - 1 - x
	}
	if c.InvertY {
		y = c.Height - 1 - y
	}
	if c.Width > 1 {
		rawX = c.RawMinX + x*(c.RawMaxX-c.RawMinX)/(c.Width-1)
	}
	if c.Height > 1 {
		rawY = c.RawMinY + y*(c.RawMaxY-c.RawMinY)/(c.Height-1)
	}
	if c.SwapXY {
		rawX, rawY = rawY, rawX
	}
	return rawX, rawY
}

func scale(v, min, max, size int) int {
	if max == min || size <= 0 {
		return 0
	}
	r := (v - min) * (size - 1) / (max - min)
	if r < 0 {
		return 0
	}
	if r > size-1 {
		return size - 1
	}
	return r
}

// CalPoint pairs a screen target with the raw reading taken while user pressed it.
type CalPoint struct {
	ScreenX int
	ScreenY int
	RawX    int
	RawY    int
}

// Fit computes calibration from four corner targets in order
// top-left, top-right, bottom-right, bottom-left.
func Fit(points [4]CalPoint, width, height int) (Calibration, error) {
	c := Calibration{Width: width, Height: height}
	if width <= 0 || height <= 0 {
		return c, errors.NotValidf("calibration screen size=%dx%d", width, height)
	}
	tl, tr, br, bl := points[0], points[1], points[2], points[3]

	// Horizontal target distance must move raw X more than raw Y, otherwise axes are swapped.
	leftRX, rightRX := avg(tl.RawX, bl.RawX), avg(tr.RawX, br.RawX)
	leftRY, rightRY := avg(tl.RawY, bl.RawY), avg(tr.RawY, br.RawY)
	if abs(rightRY-leftRY) > abs(rightRX-leftRX) {
		c.SwapXY = true
		for i := range points {
			points[i].RawX, points[i].RawY = points[i].RawY, points[i].RawX
		}
		tl, tr, br, bl = points[0], points[1], points[2], points[3]
	}

	var err error
	c.RawMinX, c.RawMaxX, c.InvertX, err = fitAxis(
		avg(tl.ScreenX, bl.ScreenX), avg(tl.RawX, bl.RawX),
		avg(tr.ScreenX, br.ScreenX), avg(tr.RawX, br.RawX),
		width)
	if err != nil {
		return c, errors.Annotate(err, "x")
	}
	c.RawMinY, c.RawMaxY, c.InvertY, err = fitAxis(
		avg(tl.ScreenY, tr.ScreenY), avg(tl.RawY, tr.RawY),
		avg(bl.ScreenY, br.ScreenY), avg(bl.RawY, br.RawY),
		height)
	if err != nil {
		return c, errors.Annotate(err, "y")
	}
	return c, nil
}

// fitAxis extrapolates two (screen, raw) samples to raw values at screen 0 and size-1.
func fitAxis(s1, r1, s2, r2, size int) (min, max int, invert bool, err error) {
	if s1 == s2 {
		return 0, 0, false, errors.NotValidf("targets at same position=%d", s1)
	}
	if r1 == r2 {
		return 0, 0, false, errors.NotValidf("raw readings equal=%d", r1)
	}
	invert = (r2 > r1) != (s2 > s1)
	if invert {
		s1, s2 = size-1-s1, size-1-s2
	}
	slope := float64(r2-r1) / float64(s2-s1)
	fmin := float64(r1) - slope*float64(s1)
	fmax := fmin + slope*float64(size-1)
	return int(math.Round(fmin)), int(math.Round(fmax)), invert, nil
}

func avg(a, b int) int { return (a + b) / 2 }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
