// Package places is a Google Places API (v1) client covering text search,
// place details, and photo URL synthesis.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// detailFieldMask lists every detail field the engine consumes.
const detailFieldMask = "id,displayName,formattedAddress,addressComponents," +
	"location,rating,userRatingCount,priceLevel,types,websiteUri," +
	"nationalPhoneNumber,regularOpeningHours.weekdayDescriptions,photos"

// Client performs Places API operations.
type Client interface {
	// SearchBest returns the place ID of the single best text-search match.
	// An empty ID with a nil error means no match, not a fault.
	SearchBest(ctx context.Context, query string) (string, error)

	// Details fetches structured place data. A nil Detail with a nil error
	// means the provider returned an empty payload.
	Details(ctx context.Context, placeID string) (*Detail, error)

	// PhotoURL builds a fetchable image URL from a photo reference.
	PhotoURL(photoRef string, maxWidth int) string
}

// Detail is the structured place record the engine merges from.
type Detail struct {
	ID                  string             `json:"id"`
	DisplayName         DisplayName        `json:"displayName"`
	FormattedAddress    string             `json:"formattedAddress"`
	AddressComponents   []AddressComponent `json:"addressComponents"`
	Location            *LatLng            `json:"location"`
	Rating              float64            `json:"rating"`
	UserRatingCount     int                `json:"userRatingCount"`
	PriceLevel          string             `json:"priceLevel"`
	Types               []string           `json:"types"`
	WebsiteURI          string             `json:"websiteUri"`
	NationalPhone       string             `json:"nationalPhoneNumber"`
	RegularOpeningHours *OpeningHours      `json:"regularOpeningHours"`
	Photos              []Photo            `json:"photos"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// AddressComponent is one structured address part.
type AddressComponent struct {
	LongText  string   `json:"longText"`
	ShortText string   `json:"shortText"`
	Types     []string `json:"types"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OpeningHours carries the human-readable weekly schedule.
type OpeningHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

// Photo is a photo reference with attribution.
type Photo struct {
	Name               string              `json:"name"`
	AuthorAttributions []AuthorAttribution `json:"authorAttributions"`
}

// AuthorAttribution names the photo's author.
type AuthorAttribution struct {
	DisplayName string `json:"displayName"`
}

// Component returns the long text of the first address component tagged with
// the given type, or "".
func (d *Detail) Component(typ string) string {
	for _, c := range d.AddressComponents {
		for _, t := range c.Types {
			if t == typ {
				return c.LongText
			}
		}
	}
	return ""
}

// priceLevels maps the v1 enum onto the familiar 1-4 tier.
var priceLevels = map[string]int{
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

// PriceTier converts the provider price enum to a numeric tier.
// ok is false when the provider supplied no usable level.
func (d *Detail) PriceTier() (int, bool) {
	tier, ok := priceLevels[d.PriceLevel]
	return tier, ok
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLimiter throttles all provider calls through a shared rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

type textSearchRequest struct {
	TextQuery string `json:"textQuery"`
	PageSize  int    `json:"pageSize"`
}

type textSearchResponse struct {
	Places []struct {
		ID string `json:"id"`
	} `json:"places"`
}

func (c *httpClient) SearchBest(ctx context.Context, query string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", eris.Wrap(err, "places: rate limit")
	}

	body, err := json.Marshal(textSearchRequest{TextQuery: query, PageSize: 1})
	if err != nil {
		return "", eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "places: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", "places.id")

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var result textSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "places: unmarshal response")
	}
	if len(result.Places) == 0 {
		return "", nil
	}
	return result.Places[0].ID, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*Detail, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+url.PathEscape(placeID), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailFieldMask)

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(respBody)) == 0 || bytes.Equal(bytes.TrimSpace(respBody), []byte("{}")) {
		return nil, nil
	}

	var detail Detail
	if err := json.Unmarshal(respBody, &detail); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}
	if detail.ID == "" && detail.DisplayName.Text == "" {
		return nil, nil
	}
	return &detail, nil
}

// PhotoURL is pure URL synthesis: no request is made. Empty input yields an
// empty URL.
func (c *httpClient) PhotoURL(photoRef string, maxWidth int) string {
	if photoRef == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/media?maxWidthPx=%d&key=%s", c.baseURL, photoRef, maxWidth, url.QueryEscape(c.apiKey))
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
