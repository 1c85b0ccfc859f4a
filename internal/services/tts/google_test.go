package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/textcast/internal/models"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *GoogleClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGoogleClient(context.Background(), GoogleConfig{
		APIKey:        "test-key",
		Endpoint:      server.URL,
		Timeout:       5 * time.Second,
		RetryAttempts: retries,
		RetryDelay:    time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestGoogleClientSynthesize(t *testing.T) {
	var got synthesizeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/text:synthesize", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(synthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("ID3-audio")),
		})
	}, 0)

	cfg, err := models.PresetAudioConfig("male-neural")
	require.NoError(t, err)

	audio, err := client.Synthesize(context.Background(), "Hello there.", cfg)
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-audio"), audio)

	assert.Equal(t, "Hello there.", got.Input.Text)
	assert.Equal(t, "en-US", got.Voice.LanguageCode)
	assert.Equal(t, "en-US-Neural2-A", got.Voice.Name)
	assert.Equal(t, "MALE", got.Voice.SsmlGender)
	assert.Equal(t, "MP3", got.AudioConfig.AudioEncoding)
	assert.Equal(t, 1.0, got.AudioConfig.SpeakingRate)
}

func TestGoogleClientErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected apperrors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"bad key","status":"UNAUTHENTICATED"}}`, apperrors.ErrCodeAuth},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`, apperrors.ErrCodeAuth},
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"slow down","status":"RESOURCE_EXHAUSTED"}}`, apperrors.ErrCodeQuota},
		{"server", http.StatusServiceUnavailable, `oops`, apperrors.ErrCodeNetwork},
		{"bad request", http.StatusBadRequest, `{"error":{"code":400,"message":"text too long","status":"INVALID_ARGUMENT"}}`, apperrors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, 0)

			_, err := client.Synthesize(context.Background(), "x", models.DefaultAudioConfig())
			require.Error(t, err)
			assert.Equal(t, tt.expected, apperrors.GetCode(err))
		})
	}
}

func TestGoogleClientRetriesTransientFailures(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(synthesizeResponse{AudioContent: base64.StdEncoding.EncodeToString([]byte("ok"))})
	}, 3)

	audio, err := client.Synthesize(context.Background(), "x", models.DefaultAudioConfig())
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), audio)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGoogleClientDoesNotRetryAuthFailures(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}, 3)

	_, err := client.Synthesize(context.Background(), "x", models.DefaultAudioConfig())
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeAuth))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGoogleClientTimeoutIsNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Synthesize(ctx, "x", models.DefaultAudioConfig())
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNetwork))
}

func TestNewGoogleClientWithoutCredentials(t *testing.T) {
	_, err := NewGoogleClient(context.Background(), GoogleConfig{})
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeSynthesisUnavailable))
}

func TestUnavailable(t *testing.T) {
	_, err := NewUnavailable("not configured").Synthesize(context.Background(), "x", models.DefaultAudioConfig())
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeSynthesisUnavailable))
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 4.0, EstimateCost(1_000_000, "en-US-Standard-C"), 1e-9)
	assert.InDelta(t, 0.016, EstimateCost(1000, "en-US-Wavenet-C"), 1e-9)
	assert.InDelta(t, 16.0, EstimateCost(1_000_000, "en-US-Neural2-A"), 1e-9)
	assert.Equal(t, 0.0, EstimateCost(0, "en-US-Wavenet-C"))
}
