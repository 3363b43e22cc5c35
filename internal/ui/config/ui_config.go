package ui_config

type Config struct { //nolint:maligned
	PeriodMs      int    `hcl:"period_ms"`
	SwipeMaxMs    int    `hcl:"swipe_max_ms"`
	InitialScreen string `hcl:"initial_screen"`

	Settings struct {
		Brightness int  `hcl:"brightness"`
		TouchSound bool `hcl:"touch_sound"`
	} `hcl:"settings"`

	Info struct {
		Board   string `hcl:"board"`
		Product string `hcl:"product"`
		Version string `hcl:"version"`
		Build   string `hcl:"build"`
	} `hcl:"info"`

	Log struct {
		Lines int `hcl:"lines"`
	} `hcl:"log"`

	Calibration struct {
		Margin int `hcl:"margin"`
	} `hcl:"calibration"`
}
