// Package framebuffer writes whole frames to Linux fbdev, e.g. fbtft driven ILI9341.
package framebuffer

import (
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"strings"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

type Framebuffer struct {
	buf    []byte
	dev    *os.File
	finfo  fixedScreenInfo
	vinfo  variableScreenInfo
	encode func(dst []byte, c color.RGBA)
}

func New(dev string) (*Framebuffer, error) {
	devFile, err := os.OpenFile(dev, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, errors.Annotate(err, "open")
	}
	fb := &Framebuffer{dev: devFile}
	fd := fb.dev.Fd()

	if err = ioctl(fd, getFixedScreenInfo, unsafe.Pointer(&fb.finfo)); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "getFixedScreenInfo")
	}
	if err = ioctl(fd, getVariableScreenInfo, unsafe.Pointer(&fb.vinfo)); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "getVariableScreenInfo")
	}
	if fb.encode, err = pickEncoder(&fb.vinfo); err != nil {
		fb.dev.Close()
		return nil, errors.Annotatef(err, "device=%s", fb.String())
	}
	stride := fb.finfo.Line_length
	if stride == 0 {
		stride = fb.vinfo.Xres * fb.vinfo.Bits_per_pixel / 8
	}
	fb.buf = make([]byte, stride*fb.vinfo.Yres)
	return fb, nil
}

func (fb *Framebuffer) Close() error {
	return fb.dev.Close()
}

func (fb *Framebuffer) String() string {
	return strings.TrimRight(string(fb.finfo.Id[:]), "\x00")
}

func (fb *Framebuffer) Flush() error {
	_, err := fb.dev.WriteAt(fb.buf, 0)
	return errors.Annotate(err, "framebuffer write")
}

func (fb *Framebuffer) Size() image.Point {
	return image.Point{X: int(fb.vinfo.Xres), Y: int(fb.vinfo.Yres)}
}

// Update converts img into internal buffer, call Flush() to write to hardware.
// Pixels outside of screen are ignored.
func (fb *Framebuffer) Update(img *image.RGBA) {
	size := fb.Size()
	bounds := img.Bounds().Intersect(image.Rectangle{Max: size})
	bpp := int(fb.vinfo.Bits_per_pixel / 8)
	stride := len(fb.buf) / size.Y
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := fb.buf[y*stride:]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			fb.encode(row[x*bpp:], img.RGBAAt(x, y))
		}
	}
}

func pickEncoder(v *variableScreenInfo) (func([]byte, color.RGBA), error) {
	switch {
	case v.Bits_per_pixel == 16 && v.Red == rgb565.Red && v.Green == rgb565.Green && v.Blue == rgb565.Blue:
		return func(dst []byte, c color.RGBA) { binary.LittleEndian.PutUint16(dst, encode565(c)) }, nil
	case v.Bits_per_pixel == 32 && v.Red.Offset == 16 && v.Green.Offset == 8 && v.Blue.Offset == 0:
		return func(dst []byte, c color.RGBA) { binary.LittleEndian.PutUint32(dst, encodeXRGB(c)) }, nil
	default:
		return nil, errors.NotSupportedf("color model bpp=%d", v.Bits_per_pixel)
	}
}

var rgb565 = variableScreenInfo{
	Red:   bitField{Offset: 11, Length: 5, Right: 0},
	Green: bitField{Offset: 5, Length: 6, Right: 0},
	Blue:  bitField{Offset: 0, Length: 5, Right: 0},
}

func encode565(c color.RGBA) uint16 {
	return (uint16(c.R) & 0xf8 << 8) | (uint16(c.G) & 0xfc << 3) | (uint16(c.B) & 0xf8 >> 3)
}

func encodeXRGB(c color.RGBA) uint32 {
	return 0xff<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func ioctl(fd uintptr, cmd uintptr, data unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, uintptr(data)); errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
