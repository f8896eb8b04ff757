package recommend

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/denisok6893-rgb/renovation-advisor/internal/catalog"
	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
)

const basementCostPerSqFt = 65.0

// Specialization tailors one strategy to a property. Zero factors mean
// "not supplied"; CostRange, when set, replaces the scaled base cost.
type Specialization struct {
	Description string
	CostFactor  float64
	ROIFactor   float64
	AgeFactor   float64
	CostRange   *catalog.Range
}

// specializer returns false to fall back to the catalog defaults.
type specializer func(a domain.Attributes, estimatedValue float64) (Specialization, bool)

var specializations = map[string]specializer{
	"kitchen-refresh":       kitchenRefresh,
	"bathroom-update":       bathroomUpdate,
	"basement-finishing":    basementFinishing,
	"curb-appeal":           curbAppeal,
	"interior-paint":        interiorPaint,
	"flooring-replacement":  flooringReplacement,
	"hvac-upgrade":          hvacUpgrade,
	"roof-replacement":      roofReplacement,
	"professional-staging":  professionalStaging,
	"landscaping":           landscaping,
	"fence-installation":    fenceInstallation,
	"deck-patio":            deckPatio,
	"open-floor-plan":       openFloorPlan,
	"brick-restoration":     brickRestoration,
	"fireplace-refresh":     fireplaceRefresh,
	"porch-restoration":     porchRestoration,
	"window-replacement":    windowReplacement,
	"primary-suite":         primarySuite,
	"exterior-paint":        exteriorPaint,
	"staircase-refresh":     staircaseRefresh,
	"outdoor-entertainment": outdoorEntertainment,
}

func specialize(id string, a domain.Attributes, estimatedValue float64) (Specialization, bool) {
	fn, ok := specializations[id]
	if !ok {
		return Specialization{}, false
	}
	return fn(a, estimatedValue)
}

func kitchenRefresh(a domain.Attributes, v float64) (Specialization, bool) {
	s := Specialization{}
	switch {
	case a.PropertyAge > 25:
		s.Description = fmt.Sprintf("Built in %d, %s likely still has its original kitchen layout. Refreshing cabinets, counters and lighting is the update buyers notice first.", a.YearBuilt, place(a))
	case a.PropertyAge > 15:
		s.Description = fmt.Sprintf("At %d years old, the kitchen in %s is starting to date. New counters, hardware and lighting bring it in line with newer listings.", a.PropertyAge, place(a))
	default:
		s.Description = fmt.Sprintf("The kitchen in %s is relatively recent, so targeted updates to hardware, lighting and backsplash keep it competitive.", place(a))
	}
	if a.SquareFootage > 2500 {
		s.CostFactor = 1.15
	}
	if v < 300000 {
		s.ROIFactor = 1.1
	}
	return s, true
}

func bathroomUpdate(a domain.Attributes, _ float64) (Specialization, bool) {
	baths := strconv.FormatFloat(a.Bathrooms, 'f', -1, 64)
	return Specialization{
		Description: fmt.Sprintf("With %s bathrooms in %s, updating vanities, fixtures and tile removes one of the most common buyer objections.", baths, place(a)),
		CostFactor:  clamp(a.Bathrooms/2, 0.75, 1.5),
	}, true
}

func basementFinishing(a domain.Attributes, _ float64) (Specialization, bool) {
	area := a.UnfinishedBasementSqFt
	if !a.HasUnfinishedBasement || area <= 0 {
		return Specialization{}, false
	}
	cost := area * basementCostPerSqFt
	s := Specialization{
		Description: fmt.Sprintf("%s has about %s sq ft of unfinished basement. Finishing it adds living space at roughly $%.0f per square foot.",
			capitalize(place(a)), commaInt(area), basementCostPerSqFt),
		CostRange: &catalog.Range{Min: roundTo100(cost * 0.8), Max: roundTo100(cost * 1.2)},
	}
	if area > 800 {
		s.ROIFactor = 1.1
	}
	return s, true
}

func curbAppeal(a domain.Attributes, _ float64) (Specialization, bool) {
	if a.LotSizeSqFt <= 0 {
		return Specialization{
			Description: fmt.Sprintf("A refreshed entry, trim and plantings make %s stand out in the listing photo.", place(a)),
		}, true
	}
	s := Specialization{
		Description: fmt.Sprintf("On a %s sq ft lot, a refreshed entry, trim and plantings make %s stand out in the listing photo.", lotSize(a), place(a)),
	}
	if a.LotSizeSqFt > 8000 {
		s.CostFactor = 1.2
	}
	return s, true
}

func interiorPaint(a domain.Attributes, _ float64) (Specialization, bool) {
	return Specialization{
		Description: fmt.Sprintf("Repainting %d bedrooms and the main living areas in a neutral palette makes every room read larger and cleaner.", a.Bedrooms),
		CostFactor:  clamp(float64(a.Bedrooms)/3, 0.8, 1.4),
	}, true
}

func flooringReplacement(a domain.Attributes, _ float64) (Specialization, bool) {
	s := Specialization{
		Description: fmt.Sprintf("Replacing worn flooring across %s sq ft of living space with durable hard surfaces gives %s a consistent, updated feel.", commaInt(float64(a.SquareFootage)), place(a)),
	}
	if a.PropertyAge > 30 {
		s.CostFactor = 1.1
	}
	return s, true
}

func hvacUpgrade(a domain.Attributes, _ float64) (Specialization, bool) {
	s := Specialization{
		Description: fmt.Sprintf("A %d-year-old home is likely on an aging heating and cooling system. A high-efficiency replacement clears a major inspection item.", a.PropertyAge),
	}
	if a.IsMultiStory {
		s.CostFactor = 1.2
	}
	if a.PropertyAge > 25 {
		s.AgeFactor = 1.1
	}
	return s, true
}

func roofReplacement(a domain.Attributes, _ float64) (Specialization, bool) {
	material := "roof"
	if a.RoofMaterial != "" {
		material = strings.ToLower(a.RoofMaterial) + " roof"
	}
	s := Specialization{
		Description: fmt.Sprintf("If the %s is original, it is about %d years old. A new roof reassures buyers, lenders and insurers.", material, a.RoofAge),
	}
	if a.IsMultiStory {
		s.CostFactor = 1.15
	}
	if a.RoofAge > 25 {
		s.ROIFactor = 1.1
	}
	return s, true
}

func professionalStaging(a domain.Attributes, _ float64) (Specialization, bool) {
	s := Specialization{CostFactor: clamp(float64(a.Bedrooms)/3, 0.8, 1.5)}
	if !a.IsOwnerOccupied {
		s.Description = fmt.Sprintf("Vacant homes sell slower. Staging the living areas and %d bedrooms helps buyers picture themselves in %s.", a.Bedrooms, place(a))
	} else {
		s.Description = fmt.Sprintf("Editing furniture and styling the living areas and %d bedrooms helps buyers picture themselves in %s.", a.Bedrooms, place(a))
	}
	return s, true
}

func landscaping(a domain.Attributes, _ float64) (Specialization, bool) {
	s := Specialization{
		Description: fmt.Sprintf("Defined beds, fresh mulch and a healthy lawn frame %s from the street.", place(a)),
	}
	switch {
	case a.LotSizeSqFt > 10000:
		s.CostFactor = 1.3
		s.Description = fmt.Sprintf("A %s sq ft lot gives plenty of room for defined beds, trees and a healthy lawn that frame %s from the street.", lotSize(a), place(a))
	case a.LotSizeSqFt > 0 && a.LotSizeSqFt < 5000:
		s.CostFactor = 0.8
	}
	return s, true
}

func fenceInstallation(a domain.Attributes, _ float64) (Specialization, bool) {
	s := Specialization{}
	if a.HasFence {
		s.Description = fmt.Sprintf("Replacing the existing fence at %s keeps the yard private and photo-ready.", place(a))
	} else {
		s.Description = fmt.Sprintf("The yard at %s is open. A privacy fence is a frequent request from buyers with children or pets.", place(a))
	}
	if a.LotSizeSqFt > 0 {
		perimeter := 4 * math.Sqrt(a.LotSizeSqFt)
		s.CostFactor = clamp(perimeter/400, 0.7, 2.0)
	}
	return s, true
}

func deckPatio(a domain.Attributes, _ float64) (Specialization, bool) {
	s := Specialization{
		Description: fmt.Sprintf("A deck or patio off the main living area extends usable space at %s into the yard.", place(a)),
	}
	if a.LotSizeSqFt > 10000 {
		s.CostFactor = 1.2
	}
	return s, true
}

func openFloorPlan(a domain.Attributes, _ float64) (Specialization, bool) {
	if a.SquareFootage >= 1500 {
		return Specialization{}, false
	}
	return Specialization{
		Description: fmt.Sprintf("At %s sq ft, opening the kitchen to the living and dining areas makes %s feel much larger than its footprint.", commaInt(float64(a.SquareFootage)), place(a)),
		ROIFactor:   1.15,
	}, true
}

func brickRestoration(a domain.Attributes, _ float64) (Specialization, bool) {
	if !a.IsBrick {
		return Specialization{}, false
	}
	s := Specialization{
		Description: fmt.Sprintf("The brick exterior of %s is a selling point once the mortar is repointed and the masonry cleaned and sealed.", place(a)),
	}
	if a.IsMultiStory {
		s.CostFactor = 1.25
	}
	return s, true
}

func fireplaceRefresh(a domain.Attributes, _ float64) (Specialization, bool) {
	if !a.HasFireplace {
		return Specialization{}, false
	}
	return Specialization{
		Description: fmt.Sprintf("The existing fireplace in %s can become the focal point of the living room with a new surround and mantel.", place(a)),
	}, true
}

func porchRestoration(a domain.Attributes, _ float64) (Specialization, bool) {
	if !a.HasPorch {
		return Specialization{}, false
	}
	s := Specialization{
		Description: fmt.Sprintf("The front porch is the first thing buyers see at %s. Repaired decking, railings and fresh paint make it inviting.", place(a)),
	}
	if a.PropertyAge > 40 {
		s.CostFactor = 1.15
	}
	return s, true
}

func windowReplacement(a domain.Attributes, _ float64) (Specialization, bool) {
	s := Specialization{
		Description: fmt.Sprintf("Efficient double-pane windows lower energy bills and quiet the %d bedrooms of %s.", a.Bedrooms, place(a)),
		CostFactor:  clamp(float64(a.Bedrooms+2)/5, 0.8, 1.5),
	}
	if a.PropertyAge > 30 {
		s.Description = fmt.Sprintf("Homes built in %d often still have original windows. Efficient double-pane units lower energy bills and quiet the %d bedrooms.", a.YearBuilt, a.Bedrooms)
	}
	return s, true
}

func primarySuite(a domain.Attributes, v float64) (Specialization, bool) {
	s := Specialization{
		Description: fmt.Sprintf("A walk-in shower, double vanity and improved closet turn the primary bedroom of %s into a true suite.", place(a)),
	}
	if v > 500000 {
		s.Description = fmt.Sprintf("Buyers at the %s price point expect a true primary suite with a walk-in shower, double vanity and generous closet.", priceTier(v))
		s.CostFactor = 1.1
	}
	return s, true
}

func exteriorPaint(a domain.Attributes, _ float64) (Specialization, bool) {
	surface := "siding"
	if a.ExteriorMaterial != "" {
		surface = strings.ToLower(a.ExteriorMaterial)
	}
	s := Specialization{
		Description: fmt.Sprintf("Fresh paint on the %s, trim and front door refreshes the whole exterior of %s in one project.", surface, place(a)),
	}
	if a.IsMultiStory {
		s.CostFactor = 1.3
	}
	return s, true
}

func staircaseRefresh(a domain.Attributes, _ float64) (Specialization, bool) {
	if !a.IsMultiStory {
		return Specialization{}, false
	}
	return Specialization{
		Description: fmt.Sprintf("In a multi-story home like %s the staircase is on view from the entry. Refinished treads and new balusters modernize it quickly.", place(a)),
	}, true
}

func outdoorEntertainment(a domain.Attributes, _ float64) (Specialization, bool) {
	if a.LotSizeSqFt <= 10000 {
		return Specialization{}, false
	}
	s := Specialization{
		Description: fmt.Sprintf("A %s sq ft lot has room for an outdoor kitchen or covered lounge that turns the yard into a selling point.", lotSize(a)),
	}
	if a.LotSizeSqFt > 20000 {
		s.CostFactor = 1.25
	}
	return s, true
}

func place(a domain.Attributes) string {
	if a.Address == "" {
		return "your home"
	}
	return a.Address
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func lotSize(a domain.Attributes) string {
	return commaInt(a.LotSizeSqFt)
}

func priceTier(v float64) string {
	return "$" + commaInt(math.Round(v/1000)*1000)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
