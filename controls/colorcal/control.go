// Package colorcal adjusts the mDNIe per-channel display colour calibration.
package colorcal

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tr4cks/hwctl/controls"
)

const (
	DefaultRedPath   = "/sys/class/mdnie/mdnie/r_adj"
	DefaultGreenPath = "/sys/class/mdnie/mdnie/g_adj"
	DefaultBluePath  = "/sys/class/mdnie/mdnie/b_adj"

	MinValue     = 1
	MaxValue     = 255
	DefaultValue = MaxValue
)

type ColorCalibrationControl struct {
	controls.DefaultControl
	Config ColorCalibrationConfig

	store  controls.Store
	logger zerolog.Logger
}

type ColorCalibrationConfig struct {
	Red   string `mapstructure:"red"`
	Green string `mapstructure:"green"`
	Blue  string `mapstructure:"blue"`
}

func New() controls.Control {
	return &ColorCalibrationControl{}
}

func (c *ColorCalibrationControl) Init(store controls.Store, logger zerolog.Logger, config map[string]interface{}) error {
	err := controls.Validate(config, &c.Config)
	if err != nil {
		return fmt.Errorf("error validating %q control configuration: %w", "colors", err)
	}
	controls.ApplyDefault(&c.Config.Red, DefaultRedPath)
	controls.ApplyDefault(&c.Config.Green, DefaultGreenPath)
	controls.ApplyDefault(&c.Config.Blue, DefaultBluePath)
	c.store = store
	c.logger = logger
	return nil
}

// channels lists the channel paths in R, G, B order.
func (c *ColorCalibrationControl) channels() []string {
	return []string{c.Config.Red, c.Config.Green, c.Config.Blue}
}

func (c *ColorCalibrationControl) Supported() bool {
	for _, path := range c.channels() {
		if !c.store.Exists(path) {
			return false
		}
	}
	return true
}

func (c *ColorCalibrationControl) Bounds() controls.Bounds {
	return controls.Bounds{Min: MinValue, Max: MaxValue, Default: DefaultValue}
}

// Colors returns the current calibration as "R G B".
func (c *ColorCalibrationControl) Colors() (string, error) {
	values := make([]string, 0, 3)
	for _, path := range c.channels() {
		value, err := c.store.Read(path)
		if err != nil {
			return "", err
		}
		values = append(values, value)
	}
	return strings.Join(values, " "), nil
}

// SetColors writes "R G B" to the three channels in order and stops at the
// first failure. Channel values are passed to the driver as given.
func (c *ColorCalibrationControl) SetColors(colors string) error {
	values := strings.Split(colors, " ")
	if len(values) < 3 {
		return fmt.Errorf("expected 3 space-separated channel values, got %q", colors)
	}

	for i, path := range c.channels() {
		err := c.store.Write(path, values[i])
		if err != nil {
			return err
		}
	}
	c.logger.Debug().Str("colors", colors).Msg("Colour calibration updated")
	return nil
}

func (c *ColorCalibrationControl) Value() controls.Result[string] {
	colors, err := c.Colors()
	return controls.Result[string]{Value: colors, Err: err}
}

func (c *ColorCalibrationControl) SetValue(value string) error {
	return c.SetColors(value)
}
