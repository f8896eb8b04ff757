package recommend

import "fmt"

// Limits bounds how many strategies the selector returns.
type Limits struct {
	DefaultCount        int     `toml:"default_count" json:"default_count"`
	MinCount            int     `toml:"min_count" json:"min_count"`
	MaxCount            int     `toml:"max_count" json:"max_count"`
	MaxCumulativeImpact float64 `toml:"max_cumulative_impact" json:"max_cumulative_impact"`
}

// DefaultLimits returns the production selection bounds.
func DefaultLimits() Limits {
	return Limits{
		DefaultCount:        8,
		MinCount:            5,
		MaxCount:            12,
		MaxCumulativeImpact: 40,
	}
}

func (l Limits) Validate() error {
	if l.MinCount <= 0 {
		return fmt.Errorf("min_count must be > 0, got %d", l.MinCount)
	}
	if l.MaxCount < l.MinCount {
		return fmt.Errorf("max_count (%d) must be >= min_count (%d)", l.MaxCount, l.MinCount)
	}
	if l.DefaultCount < l.MinCount || l.DefaultCount > l.MaxCount {
		return fmt.Errorf("default_count (%d) must be within [%d, %d]", l.DefaultCount, l.MinCount, l.MaxCount)
	}
	if l.MaxCumulativeImpact <= 0 {
		return fmt.Errorf("max_cumulative_impact must be > 0")
	}
	return nil
}

// orDefault falls back to DefaultLimits when l is not usable.
func (l Limits) orDefault() Limits {
	if l.Validate() != nil {
		return DefaultLimits()
	}
	return l
}
