package engine

import (
	"context"
	"fmt"

	"github.com/tablescout/enrich-cli/internal/igprofile"
	"github.com/tablescout/enrich-cli/pkg/airtable"
	"github.com/tablescout/enrich-cli/pkg/places"
	"github.com/tablescout/enrich-cli/pkg/textgen"
)

// stubStore serves scripted List batches and records every write.
type stubStore struct {
	batches     [][]airtable.Record // consumed in order; empty afterwards
	listErr     error
	formulas    []airtable.Formula
	updates     []write
	creates     []airtable.Fields
	updateCalls int
	updateErr   func(call int, fields airtable.Fields) error
	slugHits    map[string]airtable.Record // find-by-slug responses
}

type write struct {
	ID     string
	Fields airtable.Fields
}

func (s *stubStore) List(_ context.Context, q airtable.Query) ([]airtable.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.formulas = append(s.formulas, q.FilterFormula)
	// Slug lookups during upsert are single-record equality queries.
	for slug, rec := range s.slugHits {
		if q.FilterFormula == airtable.EqFold("Slug", slug) {
			return []airtable.Record{rec}, nil
		}
	}
	if len(s.batches) == 0 {
		return nil, nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch, nil
}

func (s *stubStore) Update(_ context.Context, id string, fields airtable.Fields) (*airtable.Record, error) {
	call := s.updateCalls
	s.updateCalls++
	if s.updateErr != nil {
		if err := s.updateErr(call, fields); err != nil {
			return nil, err
		}
	}
	s.updates = append(s.updates, write{ID: id, Fields: fields})
	return &airtable.Record{ID: id, Fields: fields}, nil
}

func (s *stubStore) Create(_ context.Context, fields airtable.Fields) (*airtable.Record, error) {
	s.creates = append(s.creates, fields)
	return &airtable.Record{ID: fmt.Sprintf("recNew%d", len(s.creates)), Fields: fields}, nil
}

// stubPlaces scripts the provider adapter.
type stubPlaces struct {
	searchID    string
	searchErr   error
	searchCalls int
	detail      *places.Detail
	detailErr   error
	detailCalls int
}

func (p *stubPlaces) SearchBest(_ context.Context, _ string) (string, error) {
	p.searchCalls++
	return p.searchID, p.searchErr
}

func (p *stubPlaces) Details(_ context.Context, _ string) (*places.Detail, error) {
	p.detailCalls++
	return p.detail, p.detailErr
}

func (p *stubPlaces) PhotoURL(photoRef string, maxWidth int) string {
	if photoRef == "" {
		return ""
	}
	return fmt.Sprintf("https://photos.example/%s?w=%d", photoRef, maxWidth)
}

// stubGen returns fixed text.
type stubGen struct {
	enabled bool
	text    string
	calls   int
}

func (g *stubGen) Generate(_ context.Context, _ textgen.VenueContext) string {
	g.calls++
	return g.text
}

func (g *stubGen) Enabled() bool { return g.enabled }

// stubFinder returns a fixed profile result.
type stubFinder struct {
	result igprofile.Result
	calls  int
}

func (f *stubFinder) Find(_ context.Context, _ string) igprofile.Result {
	f.calls++
	return f.result
}
