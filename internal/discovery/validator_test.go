package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateFor(t *testing.T, serverURL string) CandidateService {
	t.Helper()
	endpoint, err := url.Parse(serverURL)
	require.NoError(t, err)
	return CandidateService{ServiceName: "candidate", Endpoint: endpoint}
}

func TestValidateCandidateAccepts2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, isMarionettePath, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewHTTPMarionetteValidator()
	assert.True(t, validator.ValidateCandidate(context.Background(), candidateFor(t, server.URL)))
}

func TestValidateCandidate4xxRejectsWithoutRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	validator := NewHTTPMarionetteValidator()
	assert.False(t, validator.ValidateCandidate(context.Background(), candidateFor(t, server.URL)))
	assert.Equal(t, int32(1), attempts.Load(), "a client error is definitive, no retry")
}

func TestValidateCandidate5xxRetriesToBudget(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	validator := NewHTTPMarionetteValidator().WithRetries(3)
	assert.False(t, validator.ValidateCandidate(context.Background(), candidateFor(t, server.URL)))
	assert.Equal(t, int32(3), attempts.Load(), "server errors retry up to the budget")
}

func TestValidateCandidateRecoversMidBudget(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewHTTPMarionetteValidator().WithRetries(3)
	assert.True(t, validator.ValidateCandidate(context.Background(), candidateFor(t, server.URL)))
}

func TestValidateCandidateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	validator := NewHTTPMarionetteValidator().WithRetries(2)
	assert.False(t, validator.ValidateCandidate(context.Background(), candidateFor(t, server.URL)))
}
