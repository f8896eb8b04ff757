package domain

import "time"

// FormOverrides are values the visitor typed into the funnel form.
// A nil field means "not entered"; entered values win over the property record.
type FormOverrides struct {
	Address        string   `json:"address,omitempty"`
	SquareFootage  *int     `json:"square_footage,omitempty"`
	Bedrooms       *int     `json:"bedrooms,omitempty"`
	Bathrooms      *float64 `json:"bathrooms,omitempty"`
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
}

// Merge returns o with every field set in next applied on top.
func (o FormOverrides) Merge(next FormOverrides) FormOverrides {
	if next.Address != "" {
		o.Address = next.Address
	}
	if next.SquareFootage != nil {
		o.SquareFootage = next.SquareFootage
	}
	if next.Bedrooms != nil {
		o.Bedrooms = next.Bedrooms
	}
	if next.Bathrooms != nil {
		o.Bathrooms = next.Bathrooms
	}
	if next.EstimatedValue != nil {
		o.EstimatedValue = next.EstimatedValue
	}
	return o
}

// Attributes is the flat, fully populated view of a property used for scoring.
type Attributes struct {
	Address                string  `json:"address"`
	YearBuilt              int     `json:"year_built"`
	PropertyAge            int     `json:"property_age"`
	SquareFootage          int     `json:"square_footage"`
	Bedrooms               int     `json:"bedrooms"`
	Bathrooms              float64 `json:"bathrooms"`
	LotSizeSqFt            float64 `json:"lot_size_sqft"`
	YearsSinceLastSale     int     `json:"years_since_last_sale"`
	BasementAreaSqFt       float64 `json:"basement_area_sqft"`
	BasementFinishedSqFt   float64 `json:"basement_finished_sqft"`
	UnfinishedBasementSqFt float64 `json:"unfinished_basement_sqft"`
	HasUnfinishedBasement  bool    `json:"has_unfinished_basement"`
	ExteriorMaterial       string  `json:"exterior_material"`
	IsBrick                bool    `json:"is_brick"`
	HasFireplace           bool    `json:"has_fireplace"`
	HasPorch               bool    `json:"has_porch"`
	HasFence               bool    `json:"has_fence"`
	RoofMaterial           string  `json:"roof_material"`
	RoofAge                int     `json:"roof_age"`
	Stories                string  `json:"stories"`
	IsMultiStory           bool    `json:"is_multi_story"`
	EstimatedValue         float64 `json:"estimated_value"`
	IsOwnerOccupied        bool    `json:"is_owner_occupied"`
}

type Recommendation struct {
	ID           string `json:"id"`
	Strategy     string `json:"strategy"`
	Description  string `json:"description"`
	CostEstimate string `json:"cost_estimate"`
	ROIEstimate  string `json:"roi_estimate"`
	Score        int    `json:"score"`
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// LeadStep tracks how far the visitor got through the funnel.
type LeadStep string

const (
	StepAddress LeadStep = "address"
	StepDetails LeadStep = "details"
	StepContact LeadStep = "contact"
)

type Lead struct {
	ID              string           `json:"id"`
	Address         string           `json:"address"`
	Step            LeadStep         `json:"step"`
	Contact         Contact          `json:"contact"`
	Overrides       FormOverrides    `json:"overrides"`
	Attributes      Attributes       `json:"attributes"`
	EstimatedValue  float64          `json:"estimated_value"`
	RecordFound     bool             `json:"record_found"`
	Record          []byte           `json:"-"` // raw property record, kept for recomputation
	Recommendations []Recommendation `json:"recommendations"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
