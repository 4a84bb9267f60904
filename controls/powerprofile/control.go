// Package powerprofile selects the cpufreq governor that backs each power profile.
package powerprofile

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tr4cks/hwctl/controls"
)

const DefaultGovernorPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor"

type Profile int

const (
	ProfilePowerSave Profile = iota
	ProfileBalanced
	ProfileHighPerformance
)

var profiles = []struct {
	name     string
	governor string
}{
	ProfilePowerSave:       {"power-save", "conservative"},
	ProfileBalanced:        {"balanced", "pegasusq"},
	ProfileHighPerformance: {"high-performance", "performance"},
}

func (p Profile) Valid() bool {
	return p >= ProfilePowerSave && int(p) < len(profiles)
}

func (p Profile) String() string {
	if !p.Valid() {
		return "Profile(" + strconv.Itoa(int(p)) + ")"
	}
	return profiles[p].name
}

// Governor returns the cpufreq governor for p, or "" for an invalid profile.
func (p Profile) Governor() string {
	if !p.Valid() {
		return ""
	}
	return profiles[p].governor
}

// ParseProfile accepts a profile number or name.
func ParseProfile(value string) (Profile, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return Profile(n), nil
	}
	for i, profile := range profiles {
		if profile.name == value {
			return Profile(i), nil
		}
	}
	return 0, fmt.Errorf("unknown power profile %q", value)
}

type PowerProfileControl struct {
	controls.DefaultControl
	Config PowerProfileConfig

	store  controls.Store
	logger zerolog.Logger
}

type PowerProfileConfig struct {
	Governor string `mapstructure:"governor"`
}

func New() controls.Control {
	return &PowerProfileControl{}
}

func (c *PowerProfileControl) Init(store controls.Store, logger zerolog.Logger, config map[string]interface{}) error {
	err := controls.Validate(config, &c.Config)
	if err != nil {
		return fmt.Errorf("error validating %q control configuration: %w", "power-profile", err)
	}
	controls.ApplyDefault(&c.Config.Governor, DefaultGovernorPath)
	c.store = store
	c.logger = logger
	return nil
}

func (c *PowerProfileControl) Supported() bool {
	return c.store.Exists(c.Config.Governor)
}

func (c *PowerProfileControl) Bounds() controls.Bounds {
	return controls.Bounds{
		Min:     int(ProfilePowerSave),
		Max:     int(ProfileHighPerformance),
		Default: int(ProfileBalanced),
	}
}

func (c *PowerProfileControl) Profile() (Profile, error) {
	governor, err := c.store.Read(c.Config.Governor)
	if err != nil {
		return 0, err
	}
	for i, profile := range profiles {
		if profile.governor == governor {
			return Profile(i), nil
		}
	}
	return 0, fmt.Errorf("governor %q does not belong to any power profile", governor)
}

func (c *PowerProfileControl) SetProfile(profile Profile) error {
	if !profile.Valid() {
		return fmt.Errorf("invalid power profile %d", profile)
	}

	if current, err := c.Profile(); err == nil && current == profile {
		c.logger.Debug().Stringer("profile", profile).Msg("Power profile already active")
		return nil
	}

	err := c.store.Write(c.Config.Governor, profile.Governor())
	if err != nil {
		return err
	}
	c.logger.Info().Stringer("profile", profile).Str("governor", profile.Governor()).Msg("Power profile set")
	return nil
}

func (c *PowerProfileControl) Value() controls.Result[string] {
	profile, err := c.Profile()
	return controls.Result[string]{Value: strconv.Itoa(int(profile)), Err: err}
}

func (c *PowerProfileControl) SetValue(value string) error {
	profile, err := ParseProfile(value)
	if err != nil {
		return err
	}
	return c.SetProfile(profile)
}
