package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"

	"github.com/killallgit/textcast/internal/models"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

const (
	defaultEndpoint = "https://texttospeech.googleapis.com/v1"
	cloudScope      = "https://www.googleapis.com/auth/cloud-platform"
	userAgent       = "textcast/1.0"
)

// GoogleConfig holds configuration for the Google Cloud Text-to-Speech client
type GoogleConfig struct {
	APIKey            string
	CredentialsFile   string
	Endpoint          string
	LanguageCode      string
	Timeout           time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	RequestsPerSecond float64
}

// GoogleClient calls the Google Cloud Text-to-Speech REST API.
type GoogleClient struct {
	httpClient    *http.Client
	endpoint      string
	apiKey        string
	languageCode  string
	retryAttempts int
	retryDelay    time.Duration
	limiter       *rate.Limiter
}

// NewGoogleClient creates a client authenticated by API key or by a service
// account credentials file. Missing credentials are reported as
// SYNTHESIS_UNAVAILABLE so callers can fall back to the Unavailable synthesizer.
func NewGoogleClient(ctx context.Context, cfg GoogleConfig) (*GoogleClient, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch {
	case cfg.APIKey != "":
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSynthesisUnavailable, "reading TTS credentials file").
				WithDetail("path", cfg.CredentialsFile)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudScope)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSynthesisUnavailable, "parsing TTS credentials file").
				WithDetail("path", cfg.CredentialsFile)
		}
		httpClient = oauth2.NewClient(ctx, creds.TokenSource)
		httpClient.Timeout = cfg.Timeout
	default:
		return nil, apperrors.Unavailable("no Google Text-to-Speech API key or credentials file configured")
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &GoogleClient{
		httpClient:    httpClient,
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:        cfg.APIKey,
		languageCode:  cfg.LanguageCode,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		limiter:       rate.NewLimiter(limit, 1),
	}, nil
}

type synthesizeRequest struct {
	Input       synthesisInput   `json:"input"`
	Voice       voiceSelection   `json:"voice"`
	AudioConfig audioConfigField `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
	SsmlGender   string `json:"ssmlGender,omitempty"`
}

type audioConfigField struct {
	AudioEncoding string   `json:"audioEncoding"`
	SpeakingRate  float64  `json:"speakingRate,omitempty"`
	Pitch         float64  `json:"pitch"`
	VolumeGainDb  *float64 `json:"volumeGainDb,omitempty"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Synthesize implements Synthesizer. Retryable failures (quota, network) are
// retried with linear backoff up to the configured attempt count.
func (c *GoogleClient) Synthesize(ctx context.Context, text string, cfg models.AudioConfig) ([]byte, error) {
	languageCode := cfg.Voice.LanguageCode()
	if languageCode == "" {
		languageCode = c.languageCode
	}
	if languageCode == "" {
		languageCode = "en-US"
	}

	body, err := json.Marshal(synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voiceSelection{
			LanguageCode: languageCode,
			Name:         cfg.Voice.Name,
			SsmlGender:   string(cfg.Voice.Gender),
		},
		AudioConfig: audioConfigField{
			AudioEncoding: string(cfg.Encoding),
			SpeakingRate:  cfg.SpeakingRate,
			Pitch:         cfg.Pitch,
			VolumeGainDb:  cfg.VolumeGainDb,
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encoding synthesis request")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(attempt)
			log.Debug("retrying speech synthesis", "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, classifyTransportError(ctx.Err())
			case <-time.After(delay):
			}
		}

		audio, err := c.synthesizeOnce(ctx, body)
		if err == nil {
			return audio, nil
		}
		lastErr = err
		if !apperrors.Retryable(err) {
			break
		}
	}

	return nil, lastErr
}

func (c *GoogleClient) synthesizeOnce(ctx context.Context, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransportError(err)
	}

	endpoint := c.endpoint + "/text:synthesize"
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "creating synthesis request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, raw)
	}

	var out synthesizeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNetwork, "decoding synthesis response")
	}
	if out.AudioContent == "" {
		return nil, apperrors.New(apperrors.ErrCodeNetwork, "synthesis response contained no audio")
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNetwork, "decoding synthesized audio")
	}
	return audio, nil
}

// classifyStatus maps a non-200 provider response onto the error taxonomy.
func classifyStatus(status int, body []byte) error {
	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)
	message := apiErr.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}

	var code apperrors.ErrorCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden || apiErr.Error.Status == "UNAUTHENTICATED":
		code = apperrors.ErrCodeAuth
	case status == http.StatusTooManyRequests || apiErr.Error.Status == "RESOURCE_EXHAUSTED":
		code = apperrors.ErrCodeQuota
	case status >= 500:
		code = apperrors.ErrCodeNetwork
	case status == http.StatusBadRequest:
		code = apperrors.ErrCodeValidation
	default:
		code = apperrors.ErrCodeNetwork
	}

	return apperrors.Newf(code, "text-to-speech request failed: %s", message).
		WithDetail("status", status).
		WithDetail("providerStatus", apiErr.Error.Status)
}

// classifyTransportError maps transport and context failures to NETWORK_ERROR.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrCodeNetwork, "text-to-speech request timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeNetwork, fmt.Sprintf("text-to-speech request failed: %v", err))
}
