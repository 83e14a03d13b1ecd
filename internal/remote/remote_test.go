package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAdapter(NewClient(srv.URL, 5*time.Second, contract.StaticTokenSource("secret")), "warehouses")
}

func TestLoad(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/warehouses", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, err := uuid.Parse(r.Header.Get("X-Request-Id"))
		assert.NoError(t, err)
		_, _ = io.WriteString(w, `[{"_id":"a1","name":"Main"},{"_id":"a2","name":"Branch"}]`)
	})

	records, err := a.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a1", records[0].Identity())
}

func TestLoad_Envelope(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"_id":"a1"}],"total":1}`)
	})

	records, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []schema.Record{{"_id": "a1"}}, records)
}

func TestLoad_StatusError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := a.Load(context.Background())
	var statusErr *contract.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "boom", statusErr.Body)
}

func TestLoad_TokenFailure(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	tokens := &contract.MockTokenSource{}
	tokens.On("Token", mock.Anything).Return("", errors.New("expired"))

	a := NewAdapter(NewClient(srv.URL, time.Second, tokens), "warehouses")
	_, err := a.Load(context.Background())
	assert.ErrorContains(t, err, "expired")
	assert.False(t, called, "no request should be sent without a token")
	tokens.AssertExpectations(t)
}

func TestLoad_NoTokenSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	records, err := NewAdapter(NewClient(srv.URL, time.Second, nil), "warehouses").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreate(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/warehouses", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "_id", "identity is assigned by the server")
		body["_id"] = "srv-1"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	rec, err := a.Create(context.Background(), nil, schema.Record{"_id": "local", "name": "Main"})
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"_id": "srv-1", "name": "Main"}, rec)
}

func TestCreate_MissingIdentity(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"name":"Main"}`)
	})

	_, err := a.Create(context.Background(), nil, schema.Record{"name": "Main"})
	assert.ErrorContains(t, err, "without _id")
}

func TestUpdate(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/warehouses/a%2F1", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"data":{"_id":"a/1","name":"Renamed","updatedAt":"now"}}`)
	})

	rec, err := a.Update(context.Background(), nil, "a/1", schema.Record{"name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"_id": "a/1", "name": "Renamed", "updatedAt": "now"}, rec)
}

func TestDelete(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/warehouses/a1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, a.Delete(context.Background(), nil, "a1"))
}

func TestDelete_NotFound(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := a.Delete(context.Background(), nil, "a1")
	var statusErr *contract.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "unexpected status 404", err.Error())
}

func TestContextCancelled(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"_id":"1"}]`, 1, false},
		{"envelope", ` {"data":[{"_id":"1"},{"_id":"2"}]}`, 2, false},
		{"null", `null`, 0, false},
		{"empty envelope", `{"data":[]}`, 0, false},
		{"object without data", `{"items":[]}`, 0, true},
		{"garbage", `<html>`, 0, true},
		{"empty body", ``, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := decodeList([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}
