package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPriceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "XAUUSD", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, `{"c": 2415.3, "t": 1735689600}`)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, "test-key", time.Second, nil)
	q := s.GetPrice(context.Background(), "XAUUSD")

	require.NoError(t, q.Err)
	require.NotNil(t, q.Spot)
	assert.Equal(t, 2415.3, *q.Spot)
	assert.Equal(t, "live", q.Source)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetPriceDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, "bad-key", time.Second, nil)
	q := s.GetPrice(context.Background(), "XAUUSD")

	require.Error(t, q.Err)
	assert.Nil(t, q.Spot)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetPriceExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, "test-key", time.Second, nil)
	q := s.GetPrice(context.Background(), "XAUUSD")

	require.Error(t, q.Err)
	assert.Nil(t, q.Spot)
	assert.Equal(t, int32(defaultAttempts), calls.Load())
}

func TestGetPriceRejectsNonPositiveQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"c": 0}`)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, "test-key", time.Second, nil)
	q := s.GetPrice(context.Background(), "XAUUSD")

	require.Error(t, q.Err)
	assert.Nil(t, q.Spot)
}

func TestGetPriceHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewHTTPSource(srv.URL, "test-key", time.Second, nil)
	q := s.GetPrice(ctx, "XAUUSD")
	require.Error(t, q.Err)
	assert.Nil(t, q.Spot)
}
