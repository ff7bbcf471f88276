// Package model defines the venue record shapes shared by the engine and feed.
package model

import (
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Status is the logical enrichment lifecycle state. The persisted label is
// resolved separately against the store's configured select options; Status
// itself never carries a free-form string.
type Status string

const (
	StatusPending  Status = "pending"
	StatusEnriched Status = "enriched"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// String returns the canonical token for the status.
func (s Status) String() string { return string(s) }

// Venue is the normalized record served by the read-only feed.
type Venue struct {
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Source           string          `json:"source,omitempty"`
	SourceID         string          `json:"source_id,omitempty"`
	PlaceID          string          `json:"place_id,omitempty"`
	Address          string          `json:"address,omitempty"`
	City             string          `json:"city,omitempty"`
	Postcode         string          `json:"postcode,omitempty"`
	Lat              *float64        `json:"lat,omitempty"`
	Lng              *float64        `json:"lng,omitempty"`
	Website          string          `json:"website,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Instagram        string          `json:"instagram,omitempty"`
	Cuisine          string          `json:"cuisine,omitempty"`
	PriceLevel       *int            `json:"price_level,omitempty"`
	Rating           *float64        `json:"rating,omitempty"`
	RatingCount      *int            `json:"rating_count,omitempty"`
	OpeningHours     json.RawMessage `json:"opening_hours,omitempty"`
	PhotoURL         string          `json:"photo_url,omitempty"`
	PhotoAttribution string          `json:"photo_attribution,omitempty"`
	Description      string          `json:"description,omitempty"`
	LastEnriched     string          `json:"last_enriched,omitempty"`
	Status           string          `json:"status,omitempty"`
}

// stripMarks removes combining diacritical marks after NFD decomposition.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives the natural key from a display name: diacritics stripped,
// lowercased, non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	prevHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
