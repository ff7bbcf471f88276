// Package feed serves the normalized record set as read-only JSON, backed by
// a short-TTL in-memory cache with an explicit bypass parameter.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/tablescout/enrich-cli/internal/fieldconv"
	"github.com/tablescout/enrich-cli/internal/model"
	"github.com/tablescout/enrich-cli/pkg/airtable"
)

// Handler serves GET /api/venues and GET /health.
type Handler struct {
	store airtable.Client
	ttl   time.Duration
	log   *zap.Logger

	mu       sync.Mutex
	cached   []model.Venue
	cachedAt time.Time
}

// NewHandler creates a feed handler over the record store.
func NewHandler(store airtable.Client, ttl time.Duration) *Handler {
	return &Handler{
		store: store,
		ttl:   ttl,
		log:   zap.L().With(zap.String("component", "feed")),
	}
}

// Router builds the chi router with CORS for browser consumers.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Get("/api/venues", h.venues)

	return r
}

func (h *Handler) venues(w http.ResponseWriter, r *http.Request) {
	bypass := r.URL.Query().Get("refresh") == "1"

	venues, err := h.load(r.Context(), bypass)
	if err != nil {
		h.log.Error("feed: load records", zap.Error(err))
		http.Error(w, `{"error":"record store unavailable"}`, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":  len(venues),
		"venues": venues,
	})
}

func (h *Handler) load(ctx context.Context, bypass bool) ([]model.Venue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !bypass && h.cached != nil && time.Since(h.cachedAt) < h.ttl {
		return h.cached, nil
	}

	records, err := h.store.List(ctx, airtable.Query{})
	if err != nil {
		return nil, err
	}

	venues := make([]model.Venue, 0, len(records))
	for _, rec := range records {
		venues = append(venues, toVenue(rec))
	}

	h.cached = venues
	h.cachedAt = time.Now()
	return venues, nil
}

// toVenue maps a raw store record onto the feed shape.
func toVenue(rec airtable.Record) model.Venue {
	v := model.Venue{
		Name:             rec.Str("Name"),
		Slug:             rec.Str("Slug"),
		Source:           rec.Str("Source"),
		SourceID:         rec.Str("Source ID"),
		PlaceID:          rec.Str("Place ID"),
		Address:          rec.Str("Address"),
		City:             rec.Str("City"),
		Postcode:         rec.Str("Postcode"),
		Website:          rec.Str("Website"),
		Phone:            rec.Str("Phone"),
		Instagram:        rec.Str("Instagram"),
		Cuisine:          rec.Str("Cuisine"),
		PhotoURL:         rec.Str("Photo URL"),
		PhotoAttribution: rec.Str("Photo Attribution"),
		Description:      rec.Str("Description"),
		LastEnriched:     rec.Str("Last Enriched"),
		Status:           rec.Str("Status"),
	}

	if lat, ok := fieldconv.Numeric(rec.Fields["Lat"], nil, fieldconv.CoordinatePrecision); ok {
		v.Lat = &lat
	}
	if lng, ok := fieldconv.Numeric(rec.Fields["Lng"], nil, fieldconv.CoordinatePrecision); ok {
		v.Lng = &lng
	}
	if rating, ok := fieldconv.Numeric(rec.Fields["Rating"], nil, 1); ok {
		v.Rating = &rating
	}
	if count, ok := fieldconv.Numeric(rec.Fields["Rating Count"], nil, 0); ok {
		n := int(count)
		v.RatingCount = &n
	}
	if tier, ok := fieldconv.Numeric(rec.Fields["Price Level"], nil, 0); ok {
		n := int(tier)
		v.PriceLevel = &n
	}
	if hours := rec.Str("Opening Hours"); hours != "" && json.Valid([]byte(hours)) {
		v.OpeningHours = json.RawMessage(hours)
	}

	return v
}
