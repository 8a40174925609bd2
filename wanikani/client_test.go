package wanikani

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionFollowsPagination(t *testing.T) {
	var requests []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Clone(context.Background()))
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("page_after_id") == "" {
			next := fmt.Sprintf("http://%s/subjects?page_after_id=2", r.Host)
			fmt.Fprintf(w, `{"object":"collection","pages":{"next_url":%q},"data":[{"id":1},{"id":2}]}`, next)
			return
		}
		fmt.Fprint(w, `{"object":"collection","pages":{"next_url":null},"data":[{"id":3}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123")
	entries, err := client.Collection(context.Background(), "/subjects", nil)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	require.Len(t, requests, 2)
	for _, r := range requests {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "20170710", r.Header.Get("Wanikani-Revision"))
	}
	assert.Equal(t, "2", requests[1].URL.Query().Get("page_after_id"))
}

func TestCollectionSendsUpdatedAfter(t *testing.T) {
	since := time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-07-01T09:30:00Z", r.URL.Query().Get("updated_after"))
		assert.NotEmpty(t, r.Header.Get("If-Modified-Since"))
		fmt.Fprint(w, `{"object":"collection","pages":{"next_url":null},"data":[{"id":9}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	entries, err := client.Collection(context.Background(), "/assignments", &since)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCollectionTreatsNotModifiedAsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	since := time.Now().Add(-time.Minute)
	client := NewClient(server.URL, "token")
	entries, err := client.Collection(context.Background(), "/subjects", &since)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCollectionReportsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-token")
	_, err := client.Collection(context.Background(), "/subjects", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSubjectsDecodeEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"object": "collection",
			"pages": {"next_url": null},
			"data": [
				{"id": 440, "object": "radical", "data": {"characters": "土", "level": 1, "slug": "ground"}}
			]
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	subjects, err := client.Subjects(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, int64(440), subjects[0].ID)
	assert.Equal(t, "土", subjects[0].Data.Characters)
	assert.Equal(t, 1, subjects[0].Data.Level)
}
