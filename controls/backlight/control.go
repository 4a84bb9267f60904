// Package backlight drives the touch-key backlight of Samsung sec_touchkey devices.
package backlight

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tr4cks/hwctl/controls"
)

const (
	DefaultDisablePath    = "/sys/class/sec/sec_touchkey/force_disable"
	DefaultBrightnessPath = "/sys/class/sec/sec_touchkey/brightness"

	MinBrightness     = 0
	MaxBrightness     = 1
	DefaultBrightness = 1
)

// Values understood by the touchkey driver.
const (
	ledOn        = "1"
	ledOff       = "2"
	disableOn    = "1"
	disableOff   = "0"
	brightnessOn = 1
)

type BacklightControl struct {
	controls.DefaultControl
	Config BacklightConfig

	store  controls.Store
	logger zerolog.Logger
}

type BacklightConfig struct {
	Disable    string `mapstructure:"disable"`
	Brightness string `mapstructure:"brightness"`
}

func New() controls.Control {
	return &BacklightControl{}
}

func (c *BacklightControl) Init(store controls.Store, logger zerolog.Logger, config map[string]interface{}) error {
	err := controls.Validate(config, &c.Config)
	if err != nil {
		return fmt.Errorf("error validating %q control configuration: %w", "backlight", err)
	}
	controls.ApplyDefault(&c.Config.Disable, DefaultDisablePath)
	controls.ApplyDefault(&c.Config.Brightness, DefaultBrightnessPath)
	c.store = store
	c.logger = logger
	return nil
}

func (c *BacklightControl) Supported() bool {
	return c.store.Exists(c.Config.Brightness)
}

func (c *BacklightControl) Bounds() controls.Bounds {
	return controls.Bounds{Min: MinBrightness, Max: MaxBrightness, Default: DefaultBrightness}
}

// Brightness reports 1 when the driver has the keys lit and 0 otherwise.
func (c *BacklightControl) Brightness() (int, error) {
	raw, err := c.store.Read(c.Config.Brightness)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("error parsing brightness %q: %w", raw, err)
	}
	if value == brightnessOn {
		return 1, nil
	}
	return 0, nil
}

// SetBrightness switches the backlight on for values >= 1 and off otherwise.
// Enabling clears the disable flag before lighting the keys; disabling turns
// the keys off before setting the flag. Only the brightness write is
// reported; a failed flag write is logged.
func (c *BacklightControl) SetBrightness(brightness int) error {
	if brightness >= 1 {
		c.writeDisable(disableOff)
		return c.store.Write(c.Config.Brightness, ledOn)
	}

	err := c.store.Write(c.Config.Brightness, ledOff)
	c.writeDisable(disableOn)
	return err
}

func (c *BacklightControl) writeDisable(value string) {
	err := c.store.Write(c.Config.Disable, value)
	if err != nil {
		c.logger.Warn().Err(err).Str("value", value).Msg("Failed to update touchkey disable flag")
	}
}

func (c *BacklightControl) Value() controls.Result[string] {
	brightness, err := c.Brightness()
	return controls.Result[string]{Value: strconv.Itoa(brightness), Err: err}
}

func (c *BacklightControl) SetValue(value string) error {
	brightness, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("error parsing brightness %q: %w", value, err)
	}
	return c.SetBrightness(brightness)
}
