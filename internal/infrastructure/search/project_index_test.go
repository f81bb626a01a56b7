package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/project-management-api/internal/domain/entity"
)

type recorded struct {
	method, path string
	body         map[string]any
}

func fakeES(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path}
		if len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		mu.Lock()
		reqs = append(reqs, rec)
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handle(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestProjectIndex_Index(t *testing.T) {
	es, requests := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	idx := NewProjectIndex(es, "projects", nil)

	err := idx.Index(context.Background(), &entity.Project{
		ID: "p1", Name: "Apollo", Tags: []string{"space"}, Status: entity.ProjectActive, OwnerID: "u1",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})

	require.NoError(t, err)
	reqs := requests()
	require.Len(t, reqs, 1)
	got := reqs[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/projects/_doc/p1", got.path)
	assert.Equal(t, "Apollo", got.body["name"])
	assert.Equal(t, "u1", got.body["owner"])
}

func TestProjectIndex_Search(t *testing.T) {
	es, requests := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"p2"},{"_id":"p1"}]}}`))
	})
	idx := NewProjectIndex(es, "projects", nil)

	ids, err := idx.Search(context.Background(), "apollo", 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)
	reqs := requests()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasSuffix(reqs[0].path, "/projects/_search"))
	assert.EqualValues(t, 5, reqs[0].body["size"])
}

func TestProjectIndex_ErrorStatus(t *testing.T) {
	es, _ := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad query"}`))
	})
	idx := NewProjectIndex(es, "projects", nil)

	_, err := idx.Search(context.Background(), "x", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad query")
}

func TestProjectIndex_EnsureIndex(t *testing.T) {
	es, requests := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})
	idx := NewProjectIndex(es, "projects", nil)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[1].method)
	assert.Contains(t, reqs[1].body, "mappings")
}
