package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Cafe X", "cafe-x"},
		{"diacritics", "Café Noir", "cafe-noir"},
		{"punctuation", "Joe's Pizza & Grill", "joe-s-pizza-grill"},
		{"leading trailing junk", "  The Ivy  ", "the-ivy"},
		{"multiple separators", "Fish --- Chips", "fish-chips"},
		{"numbers kept", "Bar 1984", "bar-1984"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"Café Noir", "Joe's Pizza", "Bar 1984"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once))
	}
}
