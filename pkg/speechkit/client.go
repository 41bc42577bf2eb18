// Package speechkit provides a Go SDK for the Yandex Cloud SpeechKit
// speech recognition and synthesis APIs.
//
// # Authentication
//
// Every client is built around an immutable [Session] holding either an
// IAM token or an Api-Key:
//
//	session, _ := speechkit.SessionFromAPIKey(apiKey, folderID)
//	// Header: Authorization: Api-Key {key}
//
//	session, _ := speechkit.SessionFromJWT(ctx, jwtToken, "")
//	// Header: Authorization: Bearer {iam_token}
//
// IAM tokens are short-lived and are not refreshed by the SDK; re-create
// the session when the token expires.
//
// # Services
//
//   - client.STT: short-audio recognition, long-audio async jobs
//     (/speech/stt/v2/longRunningRecognize), streaming recognition
//   - client.TTS: speech synthesis (/speech/v1/tts:synthesize)
//
// Long-audio recognition stages the local file in S3-compatible object
// storage first; see the objstore package for the staging side.
package speechkit

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultSTTURL        = "https://stt.api.cloud.yandex.net"
	defaultTTSURL        = "https://tts.api.cloud.yandex.net"
	defaultTranscribeURL = "https://transcribe.api.cloud.yandex.net"
	defaultOperationURL  = "https://operation.api.cloud.yandex.net"
	defaultStreamURL     = "wss://stt.api.cloud.yandex.net"
	defaultTimeout       = 30 * time.Second
)

// Client represents a SpeechKit API client.
type Client struct {
	STT *STTService       // speech recognition (short, long-audio, streaming)
	TTS *SynthesisService // speech synthesis

	session *Session
	config  *clientConfig
}

// clientConfig represents client configuration
type clientConfig struct {
	sttURL        string
	ttsURL        string
	transcribeURL string
	operationURL  string
	streamURL     string
	httpClient    *http.Client
	timeout       time.Duration
	logger        *slog.Logger
}

// Option represents configuration option function
type Option func(*clientConfig)

// NewClient creates a SpeechKit client for the given session.
func NewClient(session *Session, opts ...Option) *Client {
	config := &clientConfig{
		sttURL:        defaultSTTURL,
		ttsURL:        defaultTTSURL,
		transcribeURL: defaultTranscribeURL,
		operationURL:  defaultOperationURL,
		streamURL:     defaultStreamURL,
		timeout:       defaultTimeout,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.httpClient == nil {
		config.httpClient = &http.Client{
			Timeout: config.timeout,
		}
	}
	if config.logger == nil {
		config.logger = slog.Default()
	}

	c := &Client{
		session: session,
		config:  config,
	}

	c.STT = newSTTService(c)
	c.TTS = newSynthesisService(c)

	return c
}

// Session returns the session the client was built with.
func (c *Client) Session() *Session {
	return c.session
}

// WithSTTEndpoint sets the short-audio recognition base URL.
//
// Default: https://stt.api.cloud.yandex.net
func WithSTTEndpoint(url string) Option {
	return func(c *clientConfig) {
		c.sttURL = url
	}
}

// WithTTSEndpoint sets the synthesis base URL.
//
// Default: https://tts.api.cloud.yandex.net
func WithTTSEndpoint(url string) Option {
	return func(c *clientConfig) {
		c.ttsURL = url
	}
}

// WithTranscribeEndpoint sets the long-audio submission base URL.
//
// Default: https://transcribe.api.cloud.yandex.net
func WithTranscribeEndpoint(url string) Option {
	return func(c *clientConfig) {
		c.transcribeURL = url
	}
}

// WithOperationEndpoint sets the long-running operation base URL.
//
// Default: https://operation.api.cloud.yandex.net
func WithOperationEndpoint(url string) Option {
	return func(c *clientConfig) {
		c.operationURL = url
	}
}

// WithStreamEndpoint sets the streaming recognition WebSocket URL.
//
// Default: wss://stt.api.cloud.yandex.net
func WithStreamEndpoint(url string) Option {
	return func(c *clientConfig) {
		c.streamURL = url
	}
}

// WithHTTPClient sets custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for non-fatal events, such as a failed
// cleanup of a staged object after a completed job.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
