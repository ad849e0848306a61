package destination

import (
	"strings"
	"time"
)

// MinQueryLength is the shortest trimmed query the pipeline will act on.
// Anything below it resolves to an empty result without touching any store.
const MinQueryLength = 2

// MaxResults caps the number of destinations a single resolution returns.
const MaxResults = 10

// Projection is the wire and cache shape of a destination: identity plus
// display fields, no counters.
type Projection struct {
	DestinationID string `json:"destinationId"`
	CityName      string `json:"cityName"`
	CountryName   string `json:"countryName"`
	CountryCode   string `json:"countryCode"`
}

// IsCountryLevel reports whether the entry represents a whole country
// rather than a city (the supplier encodes this as city == country).
func (p Projection) IsCountryLevel() bool {
	return p.CityName == p.CountryName
}

// Destination is a fully stored destination record from the DB.
type Destination struct {
	DestinationID string
	CityName      string
	CountryName   string
	CountryCode   string
	SearchCount   int
	LastUsed      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Projection returns the wire shape of the record.
func (d Destination) Projection() Projection {
	return Projection{
		DestinationID: d.DestinationID,
		CityName:      d.CityName,
		CountryName:   d.CountryName,
		CountryCode:   d.CountryCode,
	}
}

// Normalize trims surrounding whitespace and case-folds a raw query for
// comparison and cache keying.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
