package types

import "fmt"

type ScreenID uint8

const (
	ScreenHome ScreenID = iota
	ScreenMenu
	ScreenSettings
	ScreenCalibration
	ScreenInfo
	ScreenLog
	ScreenInputSettings
	ScreenOutputSettings
	ScreenStandbySettings
	ScreenTimeSettings

	ScreenCount // not a screen
)

var screenNames = [...]string{
	"Home", "Menu", "Settings", "Calibration", "Info", "Log",
	"InputSettings", "OutputSettings", "StandbySettings", "TimeSettings",
}

func (id ScreenID) String() string {
	if int(id) < len(screenNames) {
		return screenNames[id]
	}
	return fmt.Sprintf("ScreenID(%d)", id)
}

// ParseScreenID is used by config and dev console, case sensitive.
func ParseScreenID(s string) (ScreenID, bool) {
	for i, name := range screenNames {
		if name == s {
			return ScreenID(i), true
		}
	}
	return 0, false
}

// Effect selector, advisory to rendering only.
type TransitionKind uint8

const (
	TransitionNone TransitionKind = iota
	TransitionSlideUp
	TransitionSlideDown
	TransitionSlideLeft
	TransitionSlideRight
	TransitionFade
)

var transitionNames = [...]string{"None", "SlideUp", "SlideDown", "SlideLeft", "SlideRight", "Fade"}

func (k TransitionKind) String() string {
	if int(k) < len(transitionNames) {
		return transitionNames[k]
	}
	return fmt.Sprintf("TransitionKind(%d)", k)
}

func ParseTransitionKind(s string) (TransitionKind, bool) {
	for i, name := range transitionNames {
		if name == s {
			return TransitionKind(i), true
		}
	}
	return 0, false
}
