// Package config decodes and validates the planner's enumerated
// configuration (spec.md §6): the cost model selection, its velocity
// limits, grid/steer tuning, agent geometry, and output location.
package config

import (
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/multierr"
)

// RRTType names which costmodel variant the planner should build.
type RRTType string

// Recognized RRTType values.
const (
	Shortest  RRTType = "shortest"
	PointTurn RRTType = "pointturn"
	Unicycle  RRTType = "unicycle"
)

// Config is the planner's enumerated configuration, decoded from a raw
// map (e.g. parsed JSON/YAML) via Decode. MaxAngularVelocity is stored in
// degrees, matching the ingress convention; use MaxAngularVelocityRadians
// for anything fed to costmodel.
type Config struct {
	MaxLinearVelocity    float64 `json:"max_linear_velocity"`
	MaxAngularVelocity   float64 `json:"max_angular_velocity"` // degrees
	NearThreshold        float64 `json:"near_threshold"`
	MaxDistance          float64 `json:"max_distance"`
	RRTType              RRTType `json:"rrt_type"`
	AgentRadius          float64 `json:"agent_radius"`
	MetersPerPixel       float64 `json:"meters_per_pixel"`
	OutDir               string  `json:"out_dir"`
	VisualizeIterations  int     `json:"visualize_iterations"`
}

// Decode builds a Config from a raw map, such as one parsed from JSON or
// YAML by the caller.
func Decode(raw map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("config: building decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.VisualizeIterations == 0 {
		cfg.VisualizeIterations = 50
	}
	return &cfg, nil
}

// MaxAngularVelocityRadians converts the configured degrees-per-second
// limit to radians, the unit costmodel operates in.
func (c *Config) MaxAngularVelocityRadians() float64 {
	return c.MaxAngularVelocity * math.Pi / 180
}

// ValidationError aggregates every configuration problem found by
// Validate, rather than failing on the first one.
type ValidationError struct {
	err error
}

func (v *ValidationError) Error() string { return v.err.Error() }

// Unwrap exposes the aggregated errors to errors.Is/As.
func (v *ValidationError) Unwrap() error { return v.err }

// Validate checks the invariants spec.md §7 requires at construction time,
// most notably near_threshold >= max_distance (equality is admitted).
func (c *Config) Validate() error {
	var errs error
	if c.NearThreshold < c.MaxDistance {
		errs = multierr.Append(errs, fmt.Errorf(
			"near_threshold (%v) must be >= max_distance (%v)", c.NearThreshold, c.MaxDistance))
	}
	if c.MaxLinearVelocity <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("max_linear_velocity must be positive, got %v", c.MaxLinearVelocity))
	}
	if c.RRTType != Shortest && c.RRTType != PointTurn && c.RRTType != Unicycle {
		errs = multierr.Append(errs, fmt.Errorf("rrt_type %q is not one of shortest, pointturn, unicycle", c.RRTType))
	}
	if (c.RRTType == PointTurn || c.RRTType == Unicycle) && c.MaxAngularVelocity <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("max_angular_velocity must be positive for rrt_type %q", c.RRTType))
	}
	if c.AgentRadius < 0 {
		errs = multierr.Append(errs, fmt.Errorf("agent_radius must be non-negative, got %v", c.AgentRadius))
	}
	if c.MetersPerPixel <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("meters_per_pixel must be positive, got %v", c.MetersPerPixel))
	}
	if errs == nil {
		return nil
	}
	return &ValidationError{err: errs}
}
