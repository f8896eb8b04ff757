// Package catalog holds the static list of renovation strategies the
// recommendation engine ranks.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed strategies.yaml
var embeddedStrategies []byte

// Range is an inclusive numeric range such as a cost or ROI band.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type StrategyDefinition struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	BaseCost           Range   `json:"base_cost"`
	BaseROI            Range   `json:"base_roi"`
	Tags               TagSet  `json:"-"`
	ValueImpactPercent float64 `json:"value_impact_percent"`
}

type strategyYAML struct {
	ID                 string    `yaml:"id"`
	Name               string    `yaml:"name"`
	Description        string    `yaml:"description"`
	BaseCost           []float64 `yaml:"base_cost"`
	BaseROI            []float64 `yaml:"base_roi"`
	ValueImpactPercent float64   `yaml:"value_impact_percent"`
	Tags               []string  `yaml:"tags"`
}

type fileYAML struct {
	Base       []strategyYAML `yaml:"base"`
	Additional []strategyYAML `yaml:"additional"`
}

var (
	loadOnce sync.Once
	builtin  []StrategyDefinition
)

// All returns the built-in catalog in its significant order.
// The returned slice is a copy; callers may not mutate the catalog.
func All() []StrategyDefinition {
	loadOnce.Do(func() {
		s, err := Parse(embeddedStrategies)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded strategies: %v", err))
		}
		builtin = s
	})
	out := make([]StrategyDefinition, len(builtin))
	copy(out, builtin)
	return out
}

// Parse decodes a catalog document. The base section comes first, followed
// by the additional section.
func Parse(data []byte) ([]StrategyDefinition, error) {
	var f fileYAML
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	entries := append(append([]strategyYAML{}, f.Base...), f.Additional...)
	out := make([]StrategyDefinition, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for i, e := range entries {
		s, err := e.toDefinition()
		if err != nil {
			return nil, fmt.Errorf("strategy %d (%s): %w", i, e.ID, err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("strategy %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func (e strategyYAML) toDefinition() (StrategyDefinition, error) {
	id := strings.TrimSpace(e.ID)
	name := strings.TrimSpace(e.Name)
	if id == "" || name == "" {
		return StrategyDefinition{}, fmt.Errorf("id and name are required")
	}
	cost, err := toRange(e.BaseCost)
	if err != nil {
		return StrategyDefinition{}, fmt.Errorf("base_cost: %w", err)
	}
	roi, err := toRange(e.BaseROI)
	if err != nil {
		return StrategyDefinition{}, fmt.Errorf("base_roi: %w", err)
	}
	if e.ValueImpactPercent < 0 {
		return StrategyDefinition{}, fmt.Errorf("value_impact_percent must be >= 0")
	}

	var tags TagSet
	for _, name := range e.Tags {
		t, err := ParseTag(name)
		if err != nil {
			return StrategyDefinition{}, err
		}
		tags |= NewTagSet(t)
	}

	return StrategyDefinition{
		ID:                 id,
		Name:               name,
		Description:        strings.TrimSpace(e.Description),
		BaseCost:           cost,
		BaseROI:            roi,
		Tags:               tags,
		ValueImpactPercent: e.ValueImpactPercent,
	}, nil
}

func toRange(v []float64) (Range, error) {
	if len(v) != 2 {
		return Range{}, fmt.Errorf("want [min, max], got %d values", len(v))
	}
	if !finite(v[0]) || !finite(v[1]) || v[0] < 0 || v[1] < v[0] {
		return Range{}, fmt.Errorf("invalid range [%v, %v]", v[0], v[1])
	}
	return Range{Min: v[0], Max: v[1]}, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
