package config

import (
	"fmt"

	"github.com/sentineld/plcwatch/internal/telemetry"
)

// PropertyConfig is the YAML shape for one configured safety property,
// recursive so And/Or combinators can nest. Only one of (Var+Bound) or
// (Left+Right) is meaningful per Kind.
type PropertyConfig struct {
	Kind  string          `yaml:"kind"` // "le" | "rate_bound" | "and" | "or"
	Var   string          `yaml:"var,omitempty"`
	Bound float64         `yaml:"bound,omitempty"`
	Left  *PropertyConfig `yaml:"left,omitempty"`
	Right *PropertyConfig `yaml:"right,omitempty"`
}

// Properties lists every configured property: the property vector itself,
// which is externally supplied rather than derived.
type Properties struct {
	Properties []PropertyConfig `yaml:"properties"`
}

// ToProperty converts one PropertyConfig into its telemetry.Property form.
func (c PropertyConfig) ToProperty() (telemetry.Property, error) {
	switch c.Kind {
	case "le":
		v, ok := telemetry.ParseTagVar(c.Var)
		if !ok {
			return telemetry.Property{}, fmt.Errorf("config: unknown tag %q in le property", c.Var)
		}
		return telemetry.Le(v, c.Bound), nil
	case "rate_bound":
		v, ok := telemetry.ParseTagVar(c.Var)
		if !ok {
			return telemetry.Property{}, fmt.Errorf("config: unknown tag %q in rate_bound property", c.Var)
		}
		return telemetry.RateBound(v, c.Bound), nil
	case "and", "or":
		if c.Left == nil || c.Right == nil {
			return telemetry.Property{}, fmt.Errorf("config: %q property requires left and right", c.Kind)
		}
		left, err := c.Left.ToProperty()
		if err != nil {
			return telemetry.Property{}, err
		}
		right, err := c.Right.ToProperty()
		if err != nil {
			return telemetry.Property{}, err
		}
		if c.Kind == "and" {
			return telemetry.And(left, right), nil
		}
		return telemetry.Or(left, right), nil
	default:
		return telemetry.Property{}, fmt.Errorf("config: unknown property kind %q", c.Kind)
	}
}

// LoadProperties reads the property vector from path.
func LoadProperties(path string) ([]telemetry.Property, error) {
	var raw Properties
	if err := loadYAML(path, &raw); err != nil {
		return nil, fmt.Errorf("config: load properties: %w", err)
	}

	props := make([]telemetry.Property, 0, len(raw.Properties))
	for _, pc := range raw.Properties {
		p, err := pc.ToProperty()
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}
