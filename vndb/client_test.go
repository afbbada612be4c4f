package vndb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lookup(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/vn", r.URL.Path)

		var query vnQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		require.Len(t, query.Filters, 3)

		if query.Filters[2] != "v17" {
			json.NewEncoder(w).Encode(vnResponse{})
			return
		}

		json.NewEncoder(w).Encode(vnResponse{
			Results: []vnResult{
				{
					ID:    "v17",
					Title: "Ever17 -the out of infinity-",
					Titles: []vnTitle{
						{Lang: "ja", Title: "Ever17 -the out of infinity-"},
						{Lang: "en", Title: "Ever17: The Out of Infinity"},
					},
					LengthMinutes: 3000,
				},
			},
		})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)

	t.Run("resolves a known VN", func(t *testing.T) {
		t.Parallel()

		vn, err := client.Lookup(context.Background(), "v17")
		require.NoError(t, err)
		require.NotNil(t, vn)

		assert.Equal(t, "v17", vn.ID)
		assert.Equal(t, "Ever17 -the out of infinity-", vn.Title)
		assert.Equal(t, "Ever17: The Out of Infinity", vn.TitleEN)
		assert.Equal(t, int64(3000), vn.LengthMinutes)
		assert.Equal(t, int64(5), vn.DefaultPoints())
	})

	t.Run("unknown id returns nil without error", func(t *testing.T) {
		t.Parallel()

		vn, err := client.Lookup(context.Background(), "v999999")
		require.NoError(t, err)
		assert.Nil(t, vn)
	})
}

func TestClient_Lookup_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)

	_, err := client.Lookup(context.Background(), "v17")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Lookup_ContextCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Lookup(ctx, "v17")
	require.Error(t, err)
}
