package controls

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

type Constructor func() Control

// Registry maps control names to their constructors.
type Registry map[string]Constructor

func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Named is an initialised control together with the name it was registered under.
type Named struct {
	Name string
	Control
}

// Build initialises the controls listed in configs. A nil configs map enables
// every registered control with its default configuration.
func (r Registry) Build(store Store, logger zerolog.Logger, configs map[string]map[string]interface{}) ([]Named, error) {
	if configs == nil {
		configs = make(map[string]map[string]interface{}, len(r))
		for name := range r {
			configs[name] = nil
		}
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	built := make([]Named, 0, len(names))
	for _, name := range names {
		constructor, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("can't find the %q control among the internal controls (available controls: %s)", name, strings.Join(r.Names(), ", "))
		}
		control := constructor()
		err := control.Init(store, logger.With().Str("scope", name).Logger(), configs[name])
		if err != nil {
			return nil, fmt.Errorf("error during %q control initialization: %w", name, err)
		}
		built = append(built, Named{name, control})
	}
	return built, nil
}

// Find returns the control registered under name.
func Find(controls []Named, name string) (Control, bool) {
	for _, c := range controls {
		if c.Name == name {
			return c.Control, true
		}
	}
	return nil, false
}

// Status is a point-in-time view of one control.
type Status struct {
	Name      string `json:"name"`
	Supported bool   `json:"supported"`
	Bounds    Bounds `json:"bounds"`
	Value     string `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Snapshot reads every supported control. Reads run concurrently; the
// result keeps the order of controls.
func Snapshot(controls []Named) []Status {
	channels := make([]chan Result[string], len(controls))
	statuses := make([]Status, len(controls))

	for i, c := range controls {
		statuses[i] = Status{Name: c.Name, Supported: c.Supported(), Bounds: c.Bounds()}
		if !statuses[i].Supported {
			continue
		}
		task, channel := MakeAsync(c.Value)
		channels[i] = channel
		go task()
	}

	for i, channel := range channels {
		if channel == nil {
			continue
		}
		result := <-channel
		if result.Err != nil {
			statuses[i].Error = result.Err.Error()
			continue
		}
		statuses[i].Value = result.Value
	}
	return statuses
}
