package recommend

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
)

const (
	defaultYearBuilt          = 1980
	defaultSquareFootage      = 1500
	defaultBedrooms           = 3
	defaultBathrooms          = 2.0
	defaultYearsSinceLastSale = 10
	defaultEstimatedValue     = 300000.0
	earliestYearBuilt         = 1600
)

// Upper bounds for record and form numbers. Anything larger is treated as
// malformed and the default is kept.
const (
	maxAreaSqFt       = 1_000_000
	maxLotSizeSqFt    = 500_000_000
	maxRooms          = 100
	maxEstimatedValue = 1_000_000_000_000
)

// Record paths, tried in order. The first present, parseable value wins.
var (
	pathsAddress          = []string{"address.oneLine", "formattedAddress", "address"}
	pathsYearBuilt        = []string{"yearBuilt", "summary.yearBuilt", "building.summary.yearBuilt"}
	pathsSquareFootage    = []string{"squareFootage", "livingAreaSqFt", "building.size.livingSize", "building.size.universalSize"}
	pathsBedrooms         = []string{"bedroomCount", "bedrooms", "building.rooms.beds"}
	pathsBathrooms        = []string{"bathroomCount", "bathrooms", "building.rooms.bathsTotal"}
	pathsLotSize          = []string{"lotSizeSqFt", "lot.lotSizeSqFt", "lot.lotSize2"}
	pathsLastSaleYear     = []string{"lastSaleYear", "sale.saleYear"}
	pathsLastSaleDate     = []string{"lastSaleDate", "sale.saleTransDate", "sale.amount.saleRecDate"}
	pathsBasementArea     = []string{"basementAreaSqFt", "building.interior.bsmtSize"}
	pathsBasementFinished = []string{"basementFinishedAreaSqFt", "building.interior.bsmtFinishedSize"}
	pathsExterior         = []string{"exteriorMaterial", "building.construction.wallType"}
	pathsFireplace        = []string{"hasFireplace", "building.interior.fplcInd", "building.interior.fplcCount"}
	pathsPorch            = []string{"hasPorch", "building.construction.porchInd"}
	pathsFence            = []string{"hasFence", "lot.fenceInd"}
	pathsRoof             = []string{"roofMaterial", "building.construction.roofCover"}
	pathsStories          = []string{"storiesDescriptor", "stories", "building.summary.levels", "building.summary.storyDesc"}
	pathsEstimatedValue   = []string{"estimatedValue", "avm.amount.value", "assessment.market.mktTtlValue"}
	pathsOwnerOccupied    = []string{"isOwnerOccupied", "ownerOccupied"}
	pathsAbsentee         = []string{"summary.absenteeInd"}
)

var (
	leadingNumber  = regexp.MustCompile(`\d+(\.\d+)?`)
	leadingYear    = regexp.MustCompile(`^\s*(\d{4})`)
	multiStoryWord = []string{"two", "three", "multi", "split", "bi-level", "tri-level"}
	numberCleaner  = strings.NewReplacer(",", "", "$", "", " ", "")
)

// ExtractAttributes flattens a loosely structured property record into a
// fully populated attribute set. Form overrides win over record values,
// record values win over defaults. It never fails: a nil, empty or invalid
// record yields all defaults.
func ExtractAttributes(raw []byte, overrides domain.FormOverrides, currentYear int) domain.Attributes {
	r := parseRecord(raw)

	a := domain.Attributes{
		YearBuilt:       defaultYearBuilt,
		SquareFootage:   defaultSquareFootage,
		Bedrooms:        defaultBedrooms,
		Bathrooms:       defaultBathrooms,
		EstimatedValue:  defaultEstimatedValue,
		IsOwnerOccupied: true,
	}

	a.Address = r.text(pathsAddress)

	if y, ok := r.number(pathsYearBuilt); ok && int(y) >= earliestYearBuilt && int(y) <= currentYear {
		a.YearBuilt = int(y)
	}
	if v, ok := r.number(pathsSquareFootage); ok && inBounds(v, maxAreaSqFt) {
		a.SquareFootage = int(math.Round(v))
	}
	if v, ok := r.number(pathsBedrooms); ok && inBounds(v, maxRooms) && int(v) > 0 {
		a.Bedrooms = int(v)
	}
	if v, ok := r.number(pathsBathrooms); ok && inBounds(v, maxRooms) {
		a.Bathrooms = v
	}
	if v, ok := r.number(pathsLotSize); ok && inBounds(v, maxLotSizeSqFt) {
		a.LotSizeSqFt = v
	}
	if v, ok := r.number(pathsEstimatedValue); ok && inBounds(v, maxEstimatedValue) {
		a.EstimatedValue = v
	}

	a.YearsSinceLastSale = defaultYearsSinceLastSale
	if y, ok := r.saleYear(); ok && y <= currentYear {
		a.YearsSinceLastSale = currentYear - y
	}

	if v, ok := r.number(pathsBasementArea); ok && inBounds(v, maxAreaSqFt) {
		a.BasementAreaSqFt = v
	}
	if v, ok := r.number(pathsBasementFinished); ok && inBounds(v, maxAreaSqFt) {
		a.BasementFinishedSqFt = math.Min(v, a.BasementAreaSqFt)
	}
	a.UnfinishedBasementSqFt = a.BasementAreaSqFt - a.BasementFinishedSqFt
	a.HasUnfinishedBasement = a.UnfinishedBasementSqFt > 0

	a.ExteriorMaterial = r.text(pathsExterior)
	a.IsBrick = strings.Contains(strings.ToLower(a.ExteriorMaterial), "brick")

	a.HasFireplace, _ = r.flag(pathsFireplace)
	a.HasPorch, _ = r.flag(pathsPorch)
	a.HasFence, _ = r.flag(pathsFence)

	a.RoofMaterial = r.text(pathsRoof)
	a.Stories = r.text(pathsStories)
	a.IsMultiStory = isMultiStory(a.Stories)

	if v, ok := r.flag(pathsOwnerOccupied); ok {
		a.IsOwnerOccupied = v
	} else if s := strings.ToLower(r.text(pathsAbsentee)); s != "" {
		a.IsOwnerOccupied = !strings.Contains(s, "absentee")
	}

	applyOverrides(&a, overrides)

	a.PropertyAge = currentYear - a.YearBuilt
	if a.PropertyAge < 0 {
		a.PropertyAge = 0
	}
	a.RoofAge = a.PropertyAge
	return a
}

func applyOverrides(a *domain.Attributes, o domain.FormOverrides) {
	if s := strings.TrimSpace(o.Address); s != "" {
		a.Address = s
	}
	if o.SquareFootage != nil && *o.SquareFootage > 0 && *o.SquareFootage <= maxAreaSqFt {
		a.SquareFootage = *o.SquareFootage
	}
	if o.Bedrooms != nil && *o.Bedrooms > 0 && *o.Bedrooms <= maxRooms {
		a.Bedrooms = *o.Bedrooms
	}
	if o.Bathrooms != nil && inBounds(*o.Bathrooms, maxRooms) {
		a.Bathrooms = *o.Bathrooms
	}
	if o.EstimatedValue != nil && inBounds(*o.EstimatedValue, maxEstimatedValue) {
		a.EstimatedValue = *o.EstimatedValue
	}
}

func inBounds(v, limit float64) bool { return finite(v) && v > 0 && v <= limit }

func isMultiStory(desc string) bool {
	d := strings.ToLower(strings.TrimSpace(desc))
	if d == "" {
		return false
	}
	if m := leadingNumber.FindString(d); m != "" {
		if n, err := strconv.ParseFloat(m, 64); err == nil {
			return n > 1
		}
	}
	for _, w := range multiStoryWord {
		if strings.Contains(d, w) {
			return true
		}
	}
	return false
}

type record struct {
	root gjson.Result
	ok   bool
}

func parseRecord(raw []byte) record {
	if len(bytes.TrimSpace(raw)) == 0 || !gjson.ValidBytes(raw) {
		return record{}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return record{}
	}
	return record{root: root, ok: true}
}

func (r record) each(paths []string, fn func(gjson.Result) bool) {
	if !r.ok {
		return
	}
	for _, p := range paths {
		v := r.root.Get(p)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if fn(v) {
			return
		}
	}
}

func (r record) number(paths []string) (out float64, found bool) {
	r.each(paths, func(v gjson.Result) bool {
		out, found = toNumber(v)
		return found
	})
	return out, found
}

func (r record) flag(paths []string) (out bool, found bool) {
	r.each(paths, func(v gjson.Result) bool {
		out, found = toFlag(v)
		return found
	})
	return out, found
}

func (r record) text(paths []string) (out string) {
	r.each(paths, func(v gjson.Result) bool {
		switch v.Type {
		case gjson.String:
			out = strings.TrimSpace(v.Str)
		case gjson.Number:
			out = strconv.FormatFloat(v.Num, 'f', -1, 64)
		}
		return out != ""
	})
	return out
}

func (r record) saleYear() (int, bool) {
	if y, ok := r.number(pathsLastSaleYear); ok && y >= earliestYearBuilt {
		return int(y), true
	}
	var year int
	var found bool
	r.each(pathsLastSaleDate, func(v gjson.Result) bool {
		if v.Type != gjson.String {
			return false
		}
		m := leadingYear.FindStringSubmatch(v.Str)
		if m == nil {
			return false
		}
		year, _ = strconv.Atoi(m[1])
		found = year >= earliestYearBuilt
		return found
	})
	return year, found
}

func toNumber(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		s := numberCleaner.Replace(v.Str)
		if s == "" {
			return 0, false
		}
		parsed, err := cast.ToFloat64E(s)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if !finite(f) {
		return 0, false
	}
	return f, true
}

func toFlag(v gjson.Result) (bool, bool) {
	switch v.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	case gjson.Number:
		return v.Num > 0, true
	case gjson.String:
		switch s := strings.ToLower(strings.TrimSpace(v.Str)); s {
		case "":
			return false, false
		case "y", "yes":
			return true, true
		case "n", "no", "none":
			return false, true
		default:
			b, err := cast.ToBoolE(s)
			if err != nil {
				return false, false
			}
			return b, true
		}
	}
	return false, false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
