package engine

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tablescout/enrich-cli/internal/fieldconv"
	"github.com/tablescout/enrich-cli/internal/igprofile"
	"github.com/tablescout/enrich-cli/internal/model"
	"github.com/tablescout/enrich-cli/pkg/airtable"
	"github.com/tablescout/enrich-cli/pkg/places"
	"github.com/tablescout/enrich-cli/pkg/textgen"
)

// cuisineExcludedTags are provider type tags too generic to serve as a
// cuisine; the first tag outside this set wins.
var cuisineExcludedTags = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
	"food":              true,
	"store":             true,
	"restaurant":        true,
}

// processRecord runs the per-record state machine. Every failure except the
// fatal store misconfiguration is converted into a status/notes write and a
// nil return, so the batch continues.
func (e *Engine) processRecord(ctx context.Context, log *zap.Logger, rec airtable.Record, stats *Stats) error {
	name := rec.Str(fieldName)
	slug := rec.Str(fieldSlug)
	if slug == "" {
		slug = model.Slugify(name)
	}
	rlog := log.With(zap.String("slug", slug))

	if hasSkipMarker(rec) {
		rlog.Info("skip marker present, leaving record untouched")
		stats.Skipped++
		return nil
	}

	enrichedLabel, enrichedOK := e.resolver.Resolve(model.StatusEnriched, "")
	alreadyEnriched := enrichedOK && strings.EqualFold(rec.Str(fieldStatus), enrichedLabel)

	// An enriched record whose core fields are intact is only here for the
	// photo dimension; it gets a minimal patch, never a full rewrite.
	describeEnabled := e.describe != nil && e.describe.Enabled()
	refreshOnly := alreadyEnriched &&
		!blank(rec, fieldPlaceID) &&
		(!describeEnabled || !blank(rec, fieldDescription))

	// Step 1: resolve the place identifier. Present means no lookup at all.
	placeID := rec.Str(fieldPlaceID)
	if placeID == "" {
		query := buildSearchQuery(name, rec.Str(fieldCity), e.opts.Country)
		found, err := e.places.SearchBest(ctx, query)
		if err != nil {
			return e.recordFault(ctx, rlog, rec, slug, stats, refreshOnly, err)
		}
		if found == "" {
			if refreshOnly {
				rlog.Info("refresh lookup found no match, keeping enriched record as-is")
				stats.Skipped++
				return nil
			}
			rlog.Info("no provider match", zap.String("query", query))
			stats.NotFound++
			return e.writeStatus(ctx, rlog, rec, slug, model.StatusNotFound, "", "")
		}
		placeID = found
	}

	// Step 2: fetch details.
	detail, err := e.places.Details(ctx, placeID)
	if err != nil {
		return e.recordFault(ctx, rlog, rec, slug, stats, refreshOnly, err)
	}
	if detail == nil {
		if refreshOnly {
			rlog.Info("refresh details came back empty, keeping enriched record as-is")
			stats.Skipped++
			return nil
		}
		rlog.Warn("empty details payload", zap.String("place_id", placeID))
		stats.Errors++
		return e.writeStatus(ctx, rlog, rec, slug, model.StatusError, model.StatusPending.String(),
			"provider returned empty details for "+placeID)
	}

	// Step 3: compute the field set.
	photoURL, photoAttribution := e.photoFields(detail)

	if refreshOnly {
		patch := airtable.Fields{
			fieldLastEnriched: e.stamp(rec),
		}
		if photoURL != "" {
			patch[fieldPhotoURL] = photoURL
			patch[fieldPhotoAttrib] = photoAttribution
		}
		if _, err := e.upsert(ctx, rlog, rec.ID, slug, patch); err != nil {
			return e.recordFault(ctx, rlog, rec, slug, stats, refreshOnly, err)
		}
		rlog.Info("minimal photo patch for enriched record")
		stats.Enriched++
		return nil
	}

	fields := e.mergedFields(ctx, rlog, rec, slug, name, placeID, detail, photoURL, photoAttribution)

	// Step 4: full write.
	if _, err := e.upsert(ctx, rlog, rec.ID, slug, fields); err != nil {
		return e.recordFault(ctx, rlog, rec, slug, stats, refreshOnly, err)
	}
	rlog.Info("record enriched", zap.String("place_id", placeID))
	stats.Enriched++
	return nil
}

// mergedFields reconciles provider data with the existing record into the
// full write set.
func (e *Engine) mergedFields(ctx context.Context, rlog *zap.Logger, rec airtable.Record, slug, name, placeID string, detail *places.Detail, photoURL, photoAttribution string) airtable.Fields {
	fields := airtable.Fields{
		fieldSlug:         slug,
		fieldPlaceID:      placeID,
		fieldLastEnriched: e.stamp(rec),
	}

	fields[fieldName] = firstNonEmpty(name, detail.DisplayName.Text)
	fields[fieldAddress] = firstNonEmpty(detail.FormattedAddress, rec.Str(fieldAddress))
	fields[fieldCity] = firstNonEmpty(
		detail.Component("postal_town"),
		detail.Component("locality"),
		rec.Str(fieldCity),
	)
	fields[fieldPostcode] = firstNonEmpty(detail.Component("postal_code"), rec.Str(fieldPostcode))
	fields[fieldWebsite] = firstNonEmpty(detail.WebsiteURI, rec.Str(fieldWebsite))
	fields[fieldPhone] = firstNonEmpty(detail.NationalPhone, rec.Str(fieldPhone))

	if detail.Location != nil {
		fields[fieldLat] = fieldconv.Round(detail.Location.Latitude, fieldconv.CoordinatePrecision)
		fields[fieldLng] = fieldconv.Round(detail.Location.Longitude, fieldconv.CoordinatePrecision)
	} else {
		if lat, ok := fieldconv.Numeric(nil, rec.Fields[fieldLat], fieldconv.CoordinatePrecision); ok {
			fields[fieldLat] = lat
		}
		if lng, ok := fieldconv.Numeric(nil, rec.Fields[fieldLng], fieldconv.CoordinatePrecision); ok {
			fields[fieldLng] = lng
		}
	}

	if rating, ok := fieldconv.Numeric(nonZero(detail.Rating), rec.Fields[fieldRating], 1); ok {
		fields[fieldRating] = rating
	}
	if count, ok := fieldconv.Numeric(nonZero(float64(detail.UserRatingCount)), rec.Fields[fieldRatingCount], 0); ok {
		fields[fieldRatingCount] = int(count)
	}
	if tier, ok := detail.PriceTier(); ok {
		fields[fieldPriceLevel] = tier
	} else if existing, ok := fieldconv.Numeric(nil, rec.Fields[fieldPriceLevel], 0); ok {
		fields[fieldPriceLevel] = int(existing)
	}

	fields[fieldCuisine] = firstNonEmpty(guessCuisine(detail.Types), rec.Str(fieldCuisine))

	if detail.RegularOpeningHours != nil && len(detail.RegularOpeningHours.WeekdayDescriptions) > 0 {
		if hours, err := json.Marshal(detail.RegularOpeningHours.WeekdayDescriptions); err == nil {
			fields[fieldOpeningHours] = string(hours)
		}
	}

	if photoURL != "" {
		fields[fieldPhotoURL] = photoURL
		fields[fieldPhotoAttrib] = photoAttribution
	}

	// Description is generated only when the field is currently empty.
	if e.describe != nil && e.describe.Enabled() && blank(rec, fieldDescription) {
		desc := e.describe.Generate(ctx, textgen.VenueContext{
			Name:    fields[fieldName].(string),
			Slug:    slug,
			City:    fields[fieldCity].(string),
			Cuisine: fields[fieldCuisine].(string),
			Rating:  detail.Rating,
		})
		if desc != "" {
			fields[fieldDescription] = desc
		}
	}

	// Instagram discovery runs only when a website exists and the field is
	// still empty; results are cached per website URL.
	website, _ := fields[fieldWebsite].(string)
	if e.opts.FindProfiles && e.finder != nil && website != "" && blank(rec, fieldInstagram) {
		if res := e.profileLink(ctx, website); res.Status == igprofile.StatusFound {
			fields[fieldInstagram] = res.URL
		} else if res.Status == igprofile.StatusError {
			rlog.Debug("profile lookup failed", zap.String("reason", res.Reason))
		}
	}

	if label, ok := e.resolver.Resolve(model.StatusEnriched, ""); ok {
		fields[fieldStatus] = label
	}
	if !e.notesDisabled {
		fields[fieldNotes] = ""
	}

	return fields
}

// profileLink consults the cache before fetching.
func (e *Engine) profileLink(ctx context.Context, website string) igprofile.Result {
	if res, ok := e.links.Get(ctx, website); ok {
		return res
	}
	res := e.finder.Find(ctx, website)
	e.links.Set(ctx, website, res)
	return res
}

// photoFields synthesizes the photo URL and attribution from the first photo
// reference. Both are empty when the place has no photos.
func (e *Engine) photoFields(detail *places.Detail) (string, string) {
	if len(detail.Photos) == 0 {
		return "", ""
	}
	photo := detail.Photos[0]
	attribution := ""
	if len(photo.AuthorAttributions) > 0 {
		attribution = photo.AuthorAttributions[0].DisplayName
	}
	return e.places.PhotoURL(photo.Name, e.opts.PhotoMaxWidth), attribution
}

// recordFault routes a provider or store failure: store misconfiguration
// aborts the run, anything else becomes an error-status write.
func (e *Engine) recordFault(ctx context.Context, rlog *zap.Logger, rec airtable.Record, slug string, stats *Stats, refreshOnly bool, cause error) error {
	if airtable.IsNotFound(cause) {
		return cause
	}
	if refreshOnly {
		rlog.Warn("refresh pass failed, keeping enriched record as-is", zap.Error(cause))
		stats.Skipped++
		return nil
	}
	rlog.Warn("record failed", zap.Error(cause))
	stats.Errors++
	return e.writeStatus(ctx, rlog, rec, slug, model.StatusError, model.StatusPending.String(), cause.Error())
}

// writeStatus persists a status transition plus the lifecycle timestamp, and
// the fault reason when notes are available.
func (e *Engine) writeStatus(ctx context.Context, rlog *zap.Logger, rec airtable.Record, slug string, desired model.Status, fallback string, notes string) error {
	fields := airtable.Fields{
		fieldLastEnriched: e.stamp(rec),
	}
	if label, ok := e.resolver.Resolve(desired, model.Status(fallback)); ok {
		fields[fieldStatus] = label
	}
	if notes != "" && !e.notesDisabled {
		fields[fieldNotes] = notes
	}
	if _, err := e.upsert(ctx, rlog, rec.ID, slug, fields); err != nil {
		if airtable.IsNotFound(err) {
			return err
		}
		rlog.Error("status write failed", zap.Error(err))
	}
	return nil
}

// stamp renders the lifecycle timestamp at the granularity the record's
// existing value already carries.
func (e *Engine) stamp(rec airtable.Record) string {
	g := fieldconv.TimestampGranularity(rec.Str(fieldLastEnriched))
	return g.Format(time.Now())
}

// buildSearchQuery shapes the free-text lookup query.
func buildSearchQuery(name, city, country string) string {
	parts := []string{name}
	if city != "" {
		parts = append(parts, city)
	}
	if country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

// guessCuisine returns a human-readable category from the provider's type
// tags: the first tag outside the exclusion set, humanized.
func guessCuisine(types []string) string {
	for _, t := range types {
		if cuisineExcludedTags[t] {
			continue
		}
		return humanizeTag(t)
	}
	return ""
}

// humanizeTag turns "italian_restaurant" into "Italian Restaurant".
func humanizeTag(tag string) string {
	words := strings.Split(tag, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// nonZero maps a zero float to nil so absent provider numerics fall back to
// the existing value instead of stomping it with 0.
func nonZero(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}
