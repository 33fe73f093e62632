package models

import "time"

// Partition identifies which upstream feed a property came from. The two
// feeds are independent and never deduplicated against each other.
type Partition string

const (
	PartitionGeneral Partition = "general"
	PartitionInland  Partition = "inland"
)

// Property is one normalized listing from an upstream feed. Instances are
// immutable once a fetch cycle has built them; a new cycle replaces the
// whole generation.
type Property struct {
	Reference    string   `json:"reference"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PropertyType string   `json:"property_type"`
	Town         string   `json:"town"`
	Province     string   `json:"province"`
	Zone         string   `json:"zone"`
	Region       string   `json:"region,omitempty"`
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms"`
	BuiltArea    *float64 `json:"built_area"`
	PlotArea     *float64 `json:"plot_area"`
	Pool         bool     `json:"pool"`
	Views        *string  `json:"views,omitempty"`
	Orientation  *string  `json:"orientation,omitempty"`
	Images       []string `json:"images"`
	Features     []string `json:"features,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	NewBuild     bool     `json:"new_build"`
}

// MainImage returns the first feed image. Feed order is preserved, so the
// first element is the listing's main photo.
func (p *Property) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// CycleReport summarizes one fetch-and-parse cycle for a single feed.
type CycleReport struct {
	Partition      Partition     `json:"partition"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	TotalRecords   int           `json:"total_records"`
	Stored         int           `json:"stored"`
	Skipped        int           `json:"skipped"`
	Duplicates     []string      `json:"duplicates,omitempty"`
	UnmatchedTowns []string      `json:"unmatched_towns,omitempty"`
	Err            error         `json:"-"`
}
