package controls

import "github.com/rs/zerolog"

// Bounds describes the range of values a control accepts.
type Bounds struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

type Control interface {
	Init(store Store, logger zerolog.Logger, config map[string]interface{}) error
	Supported() bool
	Bounds() Bounds
	Value() Result[string]
	SetValue(value string) error
}

type DefaultControl struct{}

func (*DefaultControl) Init(store Store, logger zerolog.Logger, config map[string]interface{}) error {
	return nil
}

func (*DefaultControl) Supported() bool {
	return false
}

func (*DefaultControl) Bounds() Bounds {
	return Bounds{}
}

func (*DefaultControl) Value() Result[string] {
	return Result[string]{}
}

func (*DefaultControl) SetValue(value string) error {
	return nil
}
