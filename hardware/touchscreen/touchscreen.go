// Package touchscreen provides touch.Hardware drivers: Linux evdev,
// XPT2046 on SPI with pen IRQ over gpio character device, and a scripted mock.
package touchscreen

const (
	DriverEvdev   = EvdevTag
	DriverXPT2046 = XPT2046Tag
	DriverMock    = MockTag
)
