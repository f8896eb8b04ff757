// Package recommend ranks renovation strategies for a property and attaches
// property-specific cost and ROI ranges to the selected ones.
package recommend

import (
	"time"

	"github.com/denisok6893-rgb/renovation-advisor/internal/catalog"
	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
)

// Engine is safe for concurrent use. It holds no mutable state.
type Engine struct {
	strategies []catalog.StrategyDefinition
	limits     Limits
	now        func() time.Time
}

type Option func(*Engine)

// WithClock sets the clock used to derive the property age.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithCatalog(s []catalog.StrategyDefinition) Option {
	return func(e *Engine) {
		e.strategies = append([]catalog.StrategyDefinition(nil), s...)
	}
}

func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l.orDefault() }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		strategies: catalog.All(),
		limits:     DefaultLimits(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

type Result struct {
	Attributes      domain.Attributes       `json:"attributes"`
	EstimatedValue  float64                 `json:"estimated_value"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

// Recommend runs extraction, scoring, selection and estimation for one
// property. requestedCount <= 0 uses the configured default count.
func (e *Engine) Recommend(record []byte, overrides domain.FormOverrides, requestedCount int) Result {
	attrs := ExtractAttributes(record, overrides, e.now().Year())
	value := attrs.EstimatedValue

	scored := ScoreStrategies(attrs, e.strategies, value)
	selected := SelectTopStrategies(scored, e.limits, requestedCount)

	recs := make([]domain.Recommendation, 0, len(selected))
	for _, s := range selected {
		est := EstimateStrategy(s.Strategy, attrs, value)
		recs = append(recs, domain.Recommendation{
			ID:           s.Strategy.ID,
			Strategy:     s.Strategy.Name,
			Description:  est.Description,
			CostEstimate: est.CostEstimate,
			ROIEstimate:  est.ROIEstimate,
			Score:        s.Score,
		})
	}

	return Result{
		Attributes:      attrs,
		EstimatedValue:  value,
		Recommendations: recs,
	}
}

// Limits returns the selection bounds in effect.
func (e *Engine) Limits() Limits { return e.limits }
