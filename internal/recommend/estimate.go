package recommend

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/denisok6893-rgb/renovation-advisor/internal/catalog"
	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
)

// Estimate is the property-specific text attached to a selected strategy.
type Estimate struct {
	Description  string
	CostEstimate string
	ROIEstimate  string
}

// EstimateStrategy applies the strategy's specialization, if any, and
// formats its cost and ROI ranges for this property.
func EstimateStrategy(s catalog.StrategyDefinition, a domain.Attributes, estimatedValue float64) Estimate {
	sp, ok := specialize(s.ID, a, estimatedValue)
	if !ok {
		return Estimate{
			Description:  s.Description,
			CostEstimate: PropertySpecificCost(s.BaseCost, a, estimatedValue, 0),
			ROIEstimate:  PropertySpecificROI(s.BaseROI, a, estimatedValue, 0, 0),
		}
	}

	e := Estimate{
		Description: sp.Description,
		ROIEstimate: PropertySpecificROI(s.BaseROI, a, estimatedValue, sp.ROIFactor, sp.AgeFactor),
	}
	if e.Description == "" {
		e.Description = s.Description
	}
	if sp.CostRange != nil && validRange(*sp.CostRange) {
		e.CostEstimate = FormatCostRange(*sp.CostRange)
	} else {
		e.CostEstimate = PropertySpecificCost(s.BaseCost, a, estimatedValue, sp.CostFactor)
	}
	return e
}

func sizeFactor(sqft int) float64 {
	switch {
	case sqft > 3000:
		return 1.3
	case sqft > 2000:
		return 1.15
	case sqft < 1200:
		return 0.85
	default:
		return 1.0
	}
}

func costMarketFactor(value float64) float64 {
	switch {
	case value > 750000:
		return 1.25
	case value > 500000:
		return 1.15
	case value < 200000:
		return 0.85
	default:
		return 1.0
	}
}

func ageFactor(age int) float64 {
	switch {
	case age > 30:
		return 1.2
	case age < 10:
		return 0.9
	default:
		return 1.0
	}
}

// Luxury markets compress ROI, entry-level markets stretch it.
func roiMarketFactor(value float64) float64 {
	switch {
	case value > 750000:
		return 0.9
	case value < 200000:
		return 1.2
	default:
		return 1.0
	}
}

// PropertySpecificCost scales base by home size and market tier, and by
// customFactor when it is non-zero. Both ends are rounded to the nearest $100.
// Any non-finite intermediate falls back to the unmodified base range.
func PropertySpecificCost(base catalog.Range, a domain.Attributes, estimatedValue, customFactor float64) string {
	factor := sizeFactor(a.SquareFootage) * costMarketFactor(estimatedValue)
	if customFactor != 0 {
		factor *= customFactor
	}
	adjusted := catalog.Range{Min: roundTo100(base.Min * factor), Max: roundTo100(base.Max * factor)}
	if !validFactor(factor) || !validRange(adjusted) {
		return FormatCostRange(base)
	}
	return FormatCostRange(adjusted)
}

// PropertySpecificROI scales base by property age and market tier, then by
// the optional ageOverride and customFactor. Ends are rounded to one decimal.
func PropertySpecificROI(base catalog.Range, a domain.Attributes, estimatedValue, customFactor, ageOverride float64) string {
	age := ageFactor(a.PropertyAge)
	if ageOverride != 0 {
		age *= ageOverride
	}
	factor := age * roiMarketFactor(estimatedValue)
	if customFactor != 0 {
		factor *= customFactor
	}
	adjusted := catalog.Range{Min: round1(base.Min * factor), Max: round1(base.Max * factor)}
	if !validFactor(factor) || !validRange(adjusted) {
		return FormatROIRange(base)
	}
	return FormatROIRange(adjusted)
}

// maxDollars bounds every rendered amount well inside int64.
const maxDollars = 1e15

// FormatCostRange renders "$X,XXX - $Y,YYY". Amounts outside [0, maxDollars]
// and non-finite amounts are clamped to that range.
func FormatCostRange(r catalog.Range) string {
	return "$" + commaInt(r.Min) + " - $" + commaInt(r.Max)
}

// commaInt rounds v and renders it with thousands separators, clamped to
// [0, maxDollars].
func commaInt(v float64) string {
	switch {
	case math.IsNaN(v) || v < 0:
		v = 0
	case v > maxDollars:
		v = maxDollars
	}
	return humanize.Comma(int64(math.Round(v)))
}

// FormatROIRange renders "X.X - Y.Yx investment".
func FormatROIRange(r catalog.Range) string {
	return fmt.Sprintf("%.1f - %.1fx investment", r.Min, r.Max)
}

func roundTo100(v float64) float64 { return math.Round(v/100) * 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func validFactor(f float64) bool { return finite(f) && f > 0 }

func validRange(r catalog.Range) bool {
	return finite(r.Min) && finite(r.Max) && r.Min >= 0 && r.Max >= r.Min && r.Max <= maxDollars
}
