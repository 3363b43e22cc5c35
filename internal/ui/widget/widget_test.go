package widget

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/temoto/touchpanel/hardware/display"
	"github.com/temoto/touchpanel/internal/types"
)

func TestRectContains(t *testing.T) {
	t.Parallel()
	r := Rect{X: 10, Y: 20, W: 30, H: 40}
	cases := []struct {
		x, y   int
		expect bool
	}{
		{10, 20, true},
		{39, 59, true},
		{40, 20, false},
		{10, 60, false},
		{9, 30, false},
		{25, 19, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, r.Contains(c.x, c.y), "(%d,%d)", c.x, c.y)
	}
}

func TestTouch(t *testing.T) {
	t.Parallel()
	e := types.NewTouch(types.EventTouchMove, 5, 6, 50, 60, 1)
	x, y, touching, ok := Touch(&e)
	assert.Equal(t, []interface{}{5, 6, true, true}, []interface{}{x, y, touching, ok})
	e = types.NewTouch(types.EventTouchUp, 7, 8, 70, 80, 2)
	x, y, touching, ok = Touch(&e)
	assert.Equal(t, []interface{}{7, 8, false, true}, []interface{}{x, y, touching, ok})
	e = types.NewSwipe(types.DirectionUp, 0, 100, 0, 0, 100)
	_, _, _, ok = Touch(&e)
	assert.False(t, ok)
}

func TestButton(t *testing.T) {
	t.Parallel()
	type step struct {
		x, y     int
		touching bool
	}
	cases := []struct {
		name   string
		steps  []step
		clicks int
		final  ButtonState
	}{
		{"tap", []step{{15, 15, true}, {15, 15, false}}, 1, ButtonNormal},
		{"hold", []step{{15, 15, true}, {16, 16, true}}, 0, ButtonPressed},
		{"slide-out", []step{{15, 15, true}, {80, 15, true}, {80, 15, false}}, 0, ButtonNormal},
		{"release-outside", []step{{15, 15, true}, {80, 80, false}}, 0, ButtonNormal},
		{"press-outside", []step{{80, 80, true}, {15, 15, false}}, 0, ButtonNormal},
		{"slide-back", []step{{15, 15, true}, {80, 15, true}, {15, 15, true}, {15, 15, false}}, 1, ButtonNormal},
		{"edge", []step{{50, 30, true}, {50, 30, false}}, 0, ButtonNormal},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			clicks := 0
			b := NewButton(10, 10, 40, 20, "ok", func() { clicks++ })
			fired := 0
			for _, s := range c.steps {
				if b.HandleTouch(s.x, s.y, s.touching) {
					fired++
				}
			}
			assert.Equal(t, c.clicks, clicks)
			assert.Equal(t, c.clicks, fired)
			assert.Equal(t, c.final, b.State())
		})
	}
}

func TestButtonDisabledHidden(t *testing.T) {
	t.Parallel()
	clicks := 0
	b := NewButton(0, 0, 10, 10, "x", func() { clicks++ })
	b.SetEnabled(false)
	assert.False(t, b.HandleTouch(5, 5, true))
	assert.False(t, b.HandleTouch(5, 5, false))
	assert.Equal(t, ButtonDisabled, b.State())
	b.SetEnabled(true)
	b.SetVisible(false)
	assert.False(t, b.HandleTouch(5, 5, true))
	assert.False(t, b.HandleTouch(5, 5, false))
	assert.Equal(t, 0, clicks)
	b.SetVisible(true)
	b.HandleTouch(5, 5, true)
	assert.True(t, b.HandleTouch(5, 5, false))
	assert.Equal(t, 1, clicks)
}

func TestButtonDraw(t *testing.T) {
	t.Parallel()
	d := display.NewMock(image.Pt(40, 30))
	b := NewButton(5, 5, 30, 20, "", nil)
	b.Style.ShadowOffset = 0
	b.Style.Radius = 0
	assert.True(t, b.NeedsRedraw())
	b.Draw(d)
	assert.False(t, b.NeedsRedraw())
	assert.Equal(t, Blue, d.Pixel(20, 15))
	b.HandleTouch(20, 15, true)
	assert.True(t, b.NeedsRedraw())
	b.Draw(d)
	assert.Equal(t, BlueDark, d.Pixel(20, 15))
	b.SetEnabled(false)
	b.Draw(d)
	assert.Equal(t, Grey, d.Pixel(20, 15))
}

func TestLabelAlign(t *testing.T) {
	t.Parallel()
	d := display.NewMock(image.Pt(100, 20))
	l := NewLabel(0, 0, 100, 20, "ab")
	tw := d.TextWidth("ab", 1)
	x, _ := l.textPos(d)
	assert.Equal(t, (100-tw)/2, x)
	l.Align = AlignLeft
	x, _ = l.textPos(d)
	assert.Equal(t, labelMargin, x)
	l.Align = AlignRight
	x, _ = l.textPos(d)
	assert.Equal(t, 100-tw-labelMargin, x)
}

func TestConfirmDialog(t *testing.T) {
	t.Parallel()
	yes, no := 0, 0
	dlg := NewConfirmDialog(320, 240, "Reset", "Reset settings?")
	dlg.OnYes = func() { yes++ }
	dlg.OnNo = func() { no++ }
	assert.Equal(t, Rect{X: 40, Y: 50, W: DialogWidth, H: DialogHeight}, dlg.Rect)

	// hidden dialog ignores touches
	yb := dlg.YesButton()
	assert.False(t, dlg.HandleTouch(yb.X+1, yb.Y+1, true))
	assert.False(t, dlg.HandleTouch(yb.X+1, yb.Y+1, false))
	assert.Equal(t, 0, yes)

	dlg.Show()
	assert.False(t, dlg.HandleTouch(0, 0, true))
	assert.False(t, dlg.HandleTouch(0, 0, false))
	assert.False(t, dlg.HandleTouch(yb.X+1, yb.Y+1, true))
	assert.True(t, dlg.HandleTouch(yb.X+1, yb.Y+1, false))
	assert.Equal(t, 1, yes)
	assert.False(t, dlg.Visible())

	dlg.Show()
	nb := dlg.NoButton()
	dlg.HandleTouch(nb.X+5, nb.Y+5, true)
	// drag off dialog cancels press
	assert.False(t, dlg.HandleTouch(0, 0, false))
	assert.Equal(t, ButtonNormal, nb.State())
	dlg.HandleTouch(nb.X+5, nb.Y+5, true)
	assert.True(t, dlg.HandleTouch(nb.X+5, nb.Y+5, false))
	assert.Equal(t, 1, no)
	assert.Equal(t, 1, yes)
}

func TestConfirmDialogDraw(t *testing.T) {
	t.Parallel()
	d := display.NewMock(image.Pt(320, 240))
	dlg := NewConfirmDialog(320, 240, "T", "M")
	dlg.Draw(d)
	assert.Equal(t, color.RGBA{}, d.Pixel(0, 0))
	dlg.Show()
	dlg.Draw(d)
	assert.Equal(t, overlayColor, d.Pixel(0, 0))
	assert.Equal(t, color.RGBA{}, d.Pixel(2, 2))
	assert.Equal(t, Blue, d.Pixel(dlg.X+dlg.W/2, dlg.Y+30))
	yb := dlg.YesButton()
	assert.Equal(t, Green, d.Pixel(yb.X+yb.W/2, yb.Y+2))
}
