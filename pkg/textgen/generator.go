// Package textgen generates short venue descriptions via the Anthropic API.
// The generator is optional: when disabled or failing it returns an empty
// string and the rest of the pipeline proceeds untouched.
package textgen

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// VenueContext carries the record fields the prompt is built from.
type VenueContext struct {
	Name    string
	Slug    string
	City    string
	Cuisine string
	Rating  float64
}

// Generator produces a description for a venue.
type Generator interface {
	// Generate returns a short description, or "" when the generator is
	// disabled or the provider call fails. It never blocks the pipeline
	// with an error.
	Generate(ctx context.Context, v VenueContext) string

	// Enabled reports whether description generation is configured.
	Enabled() bool
}

// promptTemplates are the fixed prompt variants. One is picked per record by
// a stable hash of slug+name, so repeated runs produce the same prompt shape
// for the same record.
var promptTemplates = []string{
	"Write a warm, inviting two-sentence description of %s, a %s place in %s. Mention the atmosphere. Plain text only, no quotes.",
	"In two sentences, describe %s (%s, %s) for a local dining guide. Focus on what makes it worth a visit. Plain text only, no quotes.",
	"Give a concise, editorial two-sentence blurb about %s, a %s spot located in %s. Avoid superlatives. Plain text only, no quotes.",
}

// variantIndex selects a prompt template deterministically: FNV-1a 32-bit
// hash of the key, mod the template count.
func variantIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(promptTemplates)))
}

// buildPrompt renders the template selected for the venue.
func buildPrompt(v VenueContext) string {
	cuisine := v.Cuisine
	if cuisine == "" {
		cuisine = "dining"
	}
	city := v.City
	if city == "" {
		city = "town"
	}
	tmpl := promptTemplates[variantIndex(v.Slug+v.Name)]
	prompt := fmt.Sprintf(tmpl, v.Name, cuisine, city)
	if v.Rating > 0 {
		prompt += fmt.Sprintf(" Visitors rate it %.1f out of 5.", v.Rating)
	}
	return prompt
}

// Option configures the generator.
type Option func(*anthropicGenerator)

// WithLimiter throttles provider calls through a shared rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(g *anthropicGenerator) {
		g.limiter = l
	}
}

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(g *anthropicGenerator) {
		g.baseURL = u
	}
}

type anthropicGenerator struct {
	client    sdk.Client
	model     string
	maxTokens int
	enabled   bool
	limiter   *rate.Limiter
	baseURL   string
}

// NewGenerator creates an Anthropic-backed Generator. An empty API key
// yields a disabled generator.
func NewGenerator(apiKey, model string, maxTokens int, opts ...Option) Generator {
	g := &anthropicGenerator{
		model:     model,
		maxTokens: maxTokens,
		enabled:   apiKey != "",
	}
	for _, o := range opts {
		o(g)
	}
	if g.enabled {
		clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if g.baseURL != "" {
			clientOpts = append(clientOpts, option.WithBaseURL(g.baseURL))
		}
		g.client = sdk.NewClient(clientOpts...)
	}
	return g
}

func (g *anthropicGenerator) Enabled() bool { return g.enabled }

func (g *anthropicGenerator) Generate(ctx context.Context, v VenueContext) string {
	if !g.enabled {
		return ""
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return ""
		}
	}

	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(buildPrompt(v))),
		},
	})
	if err != nil {
		zap.L().Warn("textgen: generation failed",
			zap.String("venue", v.Slug),
			zap.Error(err),
		)
		return ""
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
