package recommend

import (
	"github.com/denisok6893-rgb/renovation-advisor/internal/catalog"
	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
)

type ScoredStrategy struct {
	Strategy catalog.StrategyDefinition
	Score    int
}

// Rule awards Bonus points to a strategy when Applies holds.
// Rules are independent; a strategy collects every bonus that matches.
type Rule struct {
	Name    string
	Bonus   int
	Applies func(a domain.Attributes, tags catalog.TagSet, estimatedValue float64) bool
}

var rules = []Rule{
	{"older-home", 25, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.PropertyAge > 20 && t.Has(catalog.TagOlderHome)
	}},
	{"newer-home-cosmetic", 20, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.PropertyAge < 10 && t.HasAny(catalog.TagCosmetic, catalog.TagMarketing)
	}},
	{"dated-features", 20, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.PropertyAge >= 10 && a.PropertyAge <= 20 && t.Has(catalog.TagDatedFeatures)
	}},
	{"large-home", 15, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.SquareFootage > 2000 && t.HasAny(catalog.TagStaging, catalog.TagStorage)
	}},
	{"small-home-layout", 15, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.SquareFootage < 1500 && t.Has(catalog.TagLayout)
	}},
	{"large-lot-curb-appeal", 15, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.LotSizeSqFt > 8000 && t.Has(catalog.TagCurbAppeal)
	}},
	{"vacant-home", 20, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return !a.IsOwnerOccupied && t.Has(catalog.TagEmptyHome)
	}},
	{"long-held", 10, func(a domain.Attributes, _ catalog.TagSet, _ float64) bool {
		return a.YearsSinceLastSale > 7
	}},
	{"kitchen-age", 25, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.PropertyAge > 15 && t.Has(catalog.TagKitchen)
	}},
	{"multiple-bathrooms", 15, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.Bathrooms >= 2 && t.Has(catalog.TagBathroom)
	}},
	{"high-impact", 10, func(_ domain.Attributes, t catalog.TagSet, _ float64) bool {
		return t.Has(catalog.TagHighImpact)
	}},
	{"high-roi", 10, func(_ domain.Attributes, t catalog.TagSet, _ float64) bool {
		return t.Has(catalog.TagHighROI)
	}},
	{"unfinished-basement", 35, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.HasUnfinishedBasement && t.Has(catalog.TagBasement)
	}},
	{"brick-exterior", 30, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.IsBrick && t.Has(catalog.TagBrick)
	}},
	{"fireplace", 25, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.HasFireplace && t.Has(catalog.TagFireplace)
	}},
	{"porch", 25, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.HasPorch && t.Has(catalog.TagPorch)
	}},
	{"roof-age", 30, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.RoofAge > 15 && t.Has(catalog.TagRoof)
	}},
	{"multi-story", 20, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.IsMultiStory && t.Has(catalog.TagMultiStory)
	}},
	{"unfenced-yard", 30, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return !a.HasFence && t.Has(catalog.TagYard) && t.Has(catalog.TagFencing)
	}},
	{"entertainment-lot", 25, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.LotSizeSqFt > 10000 && t.Has(catalog.TagEntertainment)
	}},
	{"luxury-market", 20, func(_ domain.Attributes, t catalog.TagSet, v float64) bool {
		return v > 500000 && t.Has(catalog.TagLuxury)
	}},
	{"aging-hvac", 25, func(a domain.Attributes, t catalog.TagSet, _ float64) bool {
		return a.PropertyAge > 15 && t.Has(catalog.TagSystems) && t.Has(catalog.TagHVAC)
	}},
}

// Rules returns a copy of the scoring rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// ScoreStrategies sums matching rule bonuses for every strategy.
// Output order equals input order.
func ScoreStrategies(a domain.Attributes, strategies []catalog.StrategyDefinition, estimatedValue float64) []ScoredStrategy {
	out := make([]ScoredStrategy, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, ScoredStrategy{Strategy: s, Score: score(a, s.Tags, estimatedValue)})
	}
	return out
}

func score(a domain.Attributes, tags catalog.TagSet, estimatedValue float64) int {
	total := 0
	for _, r := range rules {
		if r.Applies(a, tags, estimatedValue) {
			total += r.Bonus
		}
	}
	return total
}
