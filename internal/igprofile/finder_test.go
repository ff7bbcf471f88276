package igprofile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		html    string
		status  Status
		wantURL string
	}{
		{
			"anchor href",
			`<a href="https://www.instagram.com/cafex_london">Follow us</a>`,
			StatusFound,
			"https://www.instagram.com/cafex_london/",
		},
		{
			"href without www",
			`<a href="http://instagram.com/CafeX.London/">IG</a>`,
			StatusFound,
			"https://www.instagram.com/cafex.london/",
		},
		{
			"post link skipped for profile link",
			`<a href="https://www.instagram.com/p/Cxyz123/">post</a>
			 <a href="https://www.instagram.com/cafex">profile</a>`,
			StatusFound,
			"https://www.instagram.com/cafex/",
		},
		{
			"reserved segments only",
			`<a href="https://www.instagram.com/explore/">x</a>
			 <a href="https://www.instagram.com/accounts/login/">y</a>`,
			StatusNotFound,
			"",
		},
		{
			"handle mention",
			`<p>Find us on Instagram @cafex_london for updates</p>`,
			StatusFound,
			"https://www.instagram.com/cafex_london/",
		},
		{
			"email not mistaken for handle",
			`<p>Contact bookings@cafex.com for reservations</p>`,
			StatusNotFound,
			"",
		},
		{
			"domain mention rejected",
			`<p>Visit @cafex.com now</p>`,
			StatusNotFound,
			"",
		},
		{
			"numeric fragment rejected",
			`<p>Call us @ 02079460000</p>`,
			StatusNotFound,
			"",
		},
		{
			"nothing at all",
			`<html><body>Just a menu</body></html>`,
			StatusNotFound,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tt.html)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.wantURL, got.URL)
		})
	}
}

func TestValidHandle(t *testing.T) {
	t.Parallel()
	assert.True(t, validHandle("cafex_london"))
	assert.True(t, validHandle("cafe.x"))
	assert.False(t, validHandle("p"))
	assert.False(t, validHandle("explore"))
	assert.False(t, validHandle("Reels"))
	assert.False(t, validHandle(".leadingdot"))
	assert.False(t, validHandle("123456"))
	assert.False(t, validHandle("a"))
}

func TestFind_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		_, _ = w.Write([]byte(`<a href="https://www.instagram.com/cafex">IG</a>`))
	}))
	defer srv.Close()

	f := NewFinder(5 * time.Second)
	res := f.Find(context.Background(), srv.URL)

	assert.Equal(t, StatusFound, res.Status)
	assert.Equal(t, "https://www.instagram.com/cafex/", res.URL)
}

func TestFind_HTTPErrorIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFinder(5 * time.Second)
	res := f.Find(context.Background(), srv.URL)

	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Reason, "403")
}

func TestFind_NetworkFaultIsStatusError(t *testing.T) {
	f := NewFinder(time.Second)
	res := f.Find(context.Background(), "http://127.0.0.1:1/")

	assert.Equal(t, StatusError, res.Status)
	assert.NotEmpty(t, res.Reason)
}

func TestFind_InvalidURL(t *testing.T) {
	f := NewFinder(time.Second)
	res := f.Find(context.Background(), "://not-a-url")

	assert.Equal(t, StatusError, res.Status)
}
