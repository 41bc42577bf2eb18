package speechkit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vocalhq/speechkit/pkg/audio/pcm"
)

// Short audio limits documented by the service.
const (
	maxShortAudioBytes    = 1 << 20 // 1 MB
	maxShortAudioDuration = 30 * time.Second
)

// STTService provides speech recognition: short-audio single-shot calls,
// long-audio asynchronous jobs and streaming sessions.
type STTService struct {
	client *Client
}

// newSTTService creates STT service
func newSTTService(c *Client) *STTService {
	return &STTService{client: c}
}

// Recognize performs short-audio recognition and returns the recognized
// text. Suitable for single-channel audio up to 1 MB and, for LPCM,
// up to 30 seconds; longer audio goes through [STTService.NewLongAudioJob].
func (s *STTService) Recognize(ctx context.Context, data []byte, opts *RecognizeOptions) (string, error) {
	if opts == nil {
		opts = &RecognizeOptions{}
	}
	if len(data) == 0 {
		return "", newValidationError("audio data can not be empty")
	}
	if len(data) > maxShortAudioBytes {
		return "", newValidationError("maximum audio size is %d bytes, got %d", maxShortAudioBytes, len(data))
	}
	if opts.Format == "lpcm" {
		rate := opts.SampleRateHertz
		if rate == 0 {
			rate = SampleRate48000
		}
		if format, ok := pcm.ForRate(int(rate)); ok {
			if d := format.Duration(int64(len(data))); d > maxShortAudioDuration {
				return "", newValidationError("maximum audio length is %v, calculated %v", maxShortAudioDuration, d)
			}
		}
	}

	params := url.Values{}
	if opts.Lang != "" {
		params.Set("lang", string(opts.Lang))
	}
	if opts.Topic != "" {
		params.Set("topic", opts.Topic)
	}
	if opts.ProfanityFilter {
		params.Set("profanityFilter", "true")
	}
	if opts.Format != "" {
		params.Set("format", opts.Format)
	}
	if opts.SampleRateHertz != 0 {
		params.Set("sampleRateHertz", strconv.Itoa(int(opts.SampleRateHertz)))
	}
	if folder := s.client.session.FolderID(); folder != "" {
		params.Set("folderId", folder)
	}

	u := s.client.config.sttURL + "/speech/v1/stt:recognize"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", wrapError(err, "create request")
	}
	s.client.session.apply(httpReq)

	resp, err := s.client.config.httpClient.Do(httpReq)
	if err != nil {
		return "", wrapTransport("recognize", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapTransport("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", newRequestError(resp.StatusCode, respBody)
	}

	var apiResp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", wrapError(err, "unmarshal response")
	}
	return apiResp.Result, nil
}
