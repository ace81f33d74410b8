package recommender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankPostsRequestAndDecodesRanking(t *testing.T) {
	var got rankRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`["u3","u2"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ranked, err := c.Rank(context.Background(), "u1", []float64{0.1, 0.2}, []string{"u2", "u3"})

	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u2"}, ranked)
	assert.Equal(t, "u1", got.UserA)
	assert.Equal(t, []float64{0.1, 0.2}, got.UserVector)
	assert.Equal(t, []string{"u2", "u3"}, got.Candidates)
}

func TestRankEmptyBodies(t *testing.T) {
	for _, body := range []string{"", "null", "[]"} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			ranked, err := NewClient(srv.URL, time.Second).Rank(context.Background(), "u1", nil, []string{"u2"})
			require.NoError(t, err)
			assert.Empty(t, ranked)
		})
	}
}

func TestRankFailuresAreUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "bad body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ranked":`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(time.Second):
				case <-r.Context().Done():
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, 50*time.Millisecond).Rank(context.Background(), "u1", nil, []string{"u2"})
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestRankUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Rank(context.Background(), "u1", nil, []string{"u2"})
	assert.ErrorIs(t, err, ErrUnavailable)
}
