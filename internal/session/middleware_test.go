package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire_HappyPath(t *testing.T) {
	reg := NewRegistry(time.Hour)
	defer reg.Close()
	codec := NewCodec("secret")

	s := reg.Create("full", "")
	tok, err := codec.Issue(s, time.Hour)
	require.NoError(t, err)

	var seen Session
	h := Require(reg, codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/sessions/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, s.ID, seen.ID)
	assert.Equal(t, "full", seen.Mode)
}

func TestRequire_Rejections(t *testing.T) {
	reg := NewRegistry(time.Hour)
	defer reg.Close()
	codec := NewCodec("secret")

	s := reg.Create("full", "")
	tok, err := codec.Issue(s, time.Hour)
	require.NoError(t, err)
	reg.Delete(s.ID) // valid token, swept session

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	h := Require(reg, codec)(next)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer junk"},
		{"swept session", "Bearer " + tok},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sessions/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
