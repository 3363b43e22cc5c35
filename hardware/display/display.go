package display

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/juju/errors"
	"github.com/skip2/go-qrcode"
	"github.com/temoto/touchpanel/hardware/display/framebuffer"
	"github.com/temoto/touchpanel/internal/types"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const transitionSteps = 8

const transitionHistory = 16

// Display draws into memory frame, Flush sends it to framebuffer device (if any).
// Owned by display goroutine, not safe for concurrent use.
type Display struct {
	fb    *framebuffer.Framebuffer
	img   *image.RGBA
	size  image.Point
	flush int

	// frame captured at Transition(), animated over on next Flush
	prev        *image.RGBA
	pending     types.TransitionKind
	transitions []types.TransitionKind
}

func NewFb(dev string) (*Display, error) {
	fb, err := framebuffer.New(dev)
	if err != nil {
		return nil, errors.Annotatef(err, "framebuffer device=%s", dev)
	}
	d := newDisplay(fb.Size())
	d.fb = fb
	return d, nil
}

func NewMock(size image.Point) *Display {
	return newDisplay(size)
}

func newDisplay(size image.Point) *Display {
	return &Display{
		img:  image.NewRGBA(image.Rectangle{Max: size}),
		size: size,
	}
}

func (d *Display) Close() error {
	if d.fb != nil {
		return d.fb.Close()
	}
	return nil
}

func (d *Display) Width() int        { return d.size.X }
func (d *Display) Height() int       { return d.size.Y }
func (d *Display) Size() image.Point { return d.size }

// Image exposes frame for tests and screenshots.
func (d *Display) Image() *image.RGBA { return d.img }

// Flushes counts successful Flush calls.
func (d *Display) Flushes() int { return d.flush }

// Transitions returns last few requested effects, oldest first.
func (d *Display) Transitions() []types.TransitionKind { return d.transitions }

func (d *Display) Clear(c color.RGBA) {
	draw.Draw(d.img, d.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func (d *Display) Flush() error {
	if d.fb != nil {
		if d.pending != types.TransitionNone && d.prev != nil {
			if err := d.animate(); err != nil {
				return err
			}
		}
		d.fb.Update(d.img)
		if err := d.fb.Flush(); err != nil {
			return err
		}
	}
	d.pending = types.TransitionNone
	d.prev = nil
	d.flush++
	return nil
}

// Transition remembers current frame, next Flush plays effect from it to new frame.
func (d *Display) Transition(kind types.TransitionKind) {
	d.transitions = append(d.transitions, kind)
	if n := len(d.transitions); n > transitionHistory {
		d.transitions = append(d.transitions[:0], d.transitions[n-transitionHistory:]...)
	}
	if kind == types.TransitionNone {
		return
	}
	d.pending = kind
	if d.fb != nil {
		d.prev = image.NewRGBA(d.img.Rect)
		copy(d.prev.Pix, d.img.Pix)
	}
}

func (d *Display) animate() error {
	frame := image.NewRGBA(d.img.Rect)
	for step := 1; step < transitionSteps; step++ {
		composeTransition(frame, d.prev, d.img, d.pending, step, transitionSteps)
		d.fb.Update(frame)
		if err := d.fb.Flush(); err != nil {
			return errors.Annotatef(err, "transition=%s", d.pending.String())
		}
	}
	return nil
}

// composeTransition renders intermediate frame step of total.
// Slide directions name where new screen moves to, e.g. SlideUp brings it from bottom.
func composeTransition(dst, from, to *image.RGBA, kind types.TransitionKind, step, total int) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	var off image.Point
	switch kind {
	case types.TransitionSlideUp:
		off = image.Pt(0, h-h*step/total)
	case types.TransitionSlideDown:
		off = image.Pt(0, -h+h*step/total)
	case types.TransitionSlideLeft:
		off = image.Pt(w-w*step/total, 0)
	case types.TransitionSlideRight:
		off = image.Pt(-w+w*step/total, 0)
	case types.TransitionFade:
		a := uint8(255 * step / total)
		draw.Draw(dst, dst.Rect, from, image.Point{}, draw.Src)
		draw.DrawMask(dst, dst.Rect, to, image.Point{}, image.NewUniform(color.Alpha{a}), image.Point{}, draw.Over)
		return
	default:
		draw.Draw(dst, dst.Rect, to, image.Point{}, draw.Src)
		return
	}
	// old frame is pushed away by the same offset
	oldOff := off
	switch {
	case off.X > 0:
		oldOff.X = off.X - w
	case off.X < 0:
		oldOff.X = off.X + w
	case off.Y > 0:
		oldOff.Y = off.Y - h
	case off.Y < 0:
		oldOff.Y = off.Y + h
	}
	draw.Draw(dst, dst.Rect, image.Black, image.Point{}, draw.Src)
	draw.Draw(dst, from.Rect.Add(oldOff), from, image.Point{}, draw.Src)
	draw.Draw(dst, to.Rect.Add(off), to, image.Point{}, draw.Src)
}

func (d *Display) FillRect(x, y, w, h int, c color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(d.img.Rect)
	draw.Draw(d.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func (d *Display) DrawRect(x, y, w, h int, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	d.FillRect(x, y, w, 1, c)
	d.FillRect(x, y+h-1, w, 1, c)
	d.FillRect(x, y, 1, h, c)
	d.FillRect(x+w-1, y, 1, h, c)
}

func (d *Display) FillRoundRect(x, y, w, h, r int, c color.RGBA) {
	r = clampRadius(w, h, r)
	if r == 0 {
		d.FillRect(x, y, w, h, c)
		return
	}
	d.FillRect(x+r, y, w-2*r, h, c)
	d.FillRect(x, y+r, r, h-2*r, c)
	d.FillRect(x+w-r, y+r, r, h-2*r, c)
	d.fillQuarter(x+r, y+r, r, -1, -1, c)
	d.fillQuarter(x+w-r-1, y+r, r, 1, -1, c)
	d.fillQuarter(x+r, y+h-r-1, r, -1, 1, c)
	d.fillQuarter(x+w-r-1, y+h-r-1, r, 1, 1, c)
}

func (d *Display) DrawRoundRect(x, y, w, h, r int, c color.RGBA) {
	r = clampRadius(w, h, r)
	if r == 0 {
		d.DrawRect(x, y, w, h, c)
		return
	}
	d.FillRect(x+r, y, w-2*r, 1, c)
	d.FillRect(x+r, y+h-1, w-2*r, 1, c)
	d.FillRect(x, y+r, 1, h-2*r, c)
	d.FillRect(x+w-1, y+r, 1, h-2*r, c)
	// corner arcs: pixels of quarter disk edge
	for dy := 0; dy <= r; dy++ {
		for dx := 0; dx <= r; dx++ {
			if onCircle(dx, dy, r) {
				d.set(x+r-dx, y+r-dy, c)
				d.set(x+w-r-1+dx, y+r-dy, c)
				d.set(x+r-dx, y+h-r-1+dy, c)
				d.set(x+w-r-1+dx, y+h-r-1+dy, c)
			}
		}
	}
}

func (d *Display) FillCircle(cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				d.set(cx+dx, cy+dy, c)
			}
		}
	}
}

func (d *Display) fillQuarter(cx, cy, r, sx, sy int, c color.RGBA) {
	for dy := 0; dy <= r; dy++ {
		for dx := 0; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				d.set(cx+sx*dx, cy+sy*dy, c)
			}
		}
	}
}

// Text draws s with top-left corner at x,y. Size is integer scale of 7x13 font.
func (d *Display) Text(x, y int, s string, c color.RGBA, size int) {
	if size < 1 {
		size = 1
	}
	face := basicfont.Face7x13
	if size == 1 {
		dr := font.Drawer{
			Dst:  d.img,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(x, y+face.Ascent),
		}
		dr.DrawString(s)
		return
	}
	// render unscaled glyph mask then blow up pixels
	w, h := d.TextWidth(s, 1), face.Height
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	dr := font.Drawer{Dst: mask, Src: image.Opaque, Face: face, Dot: fixed.P(0, face.Ascent)}
	dr.DrawString(s)
	for my := 0; my < h; my++ {
		for mx := 0; mx < w; mx++ {
			if mask.AlphaAt(mx, my).A >= 0x80 {
				d.FillRect(x+mx*size, y+my*size, size, size, c)
			}
		}
	}
}

func (d *Display) TextWidth(s string, size int) int {
	if size < 1 {
		size = 1
	}
	return font.MeasureString(basicfont.Face7x13, s).Ceil() * size
}

func (d *Display) TextHeight(size int) int {
	if size < 1 {
		size = 1
	}
	return basicfont.Face7x13.Height * size
}

// QR draws code of text into square at x,y with side at most size pixels.
func (d *Display) QR(x, y, size int, text string) error {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return errors.Annotate(err, "QR")
	}
	qr.DisableBorder = true
	img, ok := qr.Image(size).(*image.Paletted)
	if !ok {
		return errors.Errorf("QR unexpected image type")
	}
	at := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x, y).Add(img.Bounds().Size())}
	if !at.In(image.Rectangle{Max: d.size}) {
		return errors.Errorf("QR image at=%s > display size=%s", at.String(), d.size.String())
	}
	d.palleted2(x, y, img)
	return nil
}

func (d *Display) String2() string {
	b := strings.Builder{}
	b.Grow((d.size.X*2 + 1) * d.size.Y) // +1 for \n
	for y := 0; y < d.size.Y; y++ {
		for x := 0; x < d.size.X; x++ {
			c := d.get(x, y)
			if c.R == 0 && c.G == 0 && c.B == 0 {
				b.WriteString("  ")
			} else {
				b.WriteString("██")
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

// Pixel is for tests.
func (d *Display) Pixel(x, y int) color.RGBA { return d.get(x, y) }

func (d *Display) palleted2(ox, oy int, img *image.Paletted) {
	min, max := img.Bounds().Min, img.Bounds().Max
	bg := toRGBA(img.Palette[0])
	fg := toRGBA(img.Palette[1])
	for y := min.Y; y < max.Y; y++ {
		for x := min.X; x < max.X; x++ {
			palidx := img.Pix[img.PixOffset(x, y)]
			c := bg
			if palidx != 0 {
				c = fg
			}
			d.set(ox+x-min.X, oy+y-min.Y, c)
		}
	}
}

func (d *Display) get(x, y int) color.RGBA { return d.img.RGBAAt(x, y) }

// set ignores points outside of screen
func (d *Display) set(x, y int, c color.RGBA) { d.img.SetRGBA(x, y, c) }

func clampRadius(w, h, r int) int {
	if r < 0 {
		return 0
	}
	if m := minInt(w, h) / 2; r > m {
		return m
	}
	return r
}

// onCircle reports whether point lies on 1px wide ring of radius r.
func onCircle(dx, dy, r int) bool {
	d2 := dx*dx + dy*dy
	return d2 <= r*r && d2 > (r-1)*(r-1)
}

func minInt(i1, i2 int) int {
	if i1 <= i2 {
		return i1
	}
	return i2
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
