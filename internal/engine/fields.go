package engine

import (
	"strings"

	"github.com/tablescout/enrich-cli/pkg/airtable"
)

// Store column names. The status column's select labels are configurable;
// the column names themselves are fixed.
const (
	fieldName         = "Name"
	fieldSlug         = "Slug"
	fieldSource       = "Source"
	fieldSourceID     = "Source ID"
	fieldPlaceID      = "Place ID"
	fieldAddress      = "Address"
	fieldCity         = "City"
	fieldPostcode     = "Postcode"
	fieldLat          = "Lat"
	fieldLng          = "Lng"
	fieldWebsite      = "Website"
	fieldPhone        = "Phone"
	fieldInstagram    = "Instagram"
	fieldCuisine      = "Cuisine"
	fieldPriceLevel   = "Price Level"
	fieldRating       = "Rating"
	fieldRatingCount  = "Rating Count"
	fieldOpeningHours = "Opening Hours"
	fieldPhotoURL     = "Photo URL"
	fieldPhotoAttrib  = "Photo Attribution"
	fieldDescription  = "Description"
	fieldLastEnriched = "Last Enriched"
	fieldStatus       = "Status"
	fieldNotes        = "Notes"
)

// skipMarker in the notes column excludes a record from processing without
// touching its status. Operators set it by hand for problem records.
const skipMarker = "[skip]"

func hasSkipMarker(rec airtable.Record) bool {
	return strings.Contains(rec.Str(fieldNotes), skipMarker)
}

func blank(rec airtable.Record, field string) bool {
	return strings.TrimSpace(rec.Str(field)) == ""
}

// firstNonEmpty keeps existing data when the provider supplied nothing.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
