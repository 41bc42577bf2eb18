package speechkit

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxSynthesisChars is the service-side limit on input length,
// counted in characters, not bytes.
const maxSynthesisChars = 5000

// SynthesisService converts text or SSML markup to audio.
type SynthesisService struct {
	client *Client
}

func newSynthesisService(c *Client) *SynthesisService {
	return &SynthesisService{client: c}
}

// Synthesize renders the request to audio and returns the encoded
// bytes. Exactly one of Text or SSML must be set.
//
//	audio, err := client.TTS.Synthesize(ctx, &speechkit.SynthesisRequest{
//		Text:  "привет мир",
//		Voice: "alena",
//	})
func (s *SynthesisService) Synthesize(ctx context.Context, req *SynthesisRequest) ([]byte, error) {
	if req == nil {
		return nil, newValidationError("synthesis request is required")
	}
	if (req.Text == "") == (req.SSML == "") {
		return nil, newValidationError("exactly one of text or ssml must be set")
	}
	input := req.Text
	if input == "" {
		input = req.SSML
	}
	if n := utf8.RuneCountInString(input); n > maxSynthesisChars {
		return nil, newValidationError("input is %d characters, limit is %d", n, maxSynthesisChars)
	}

	form := url.Values{}
	if req.Text != "" {
		form.Set("text", req.Text)
	} else {
		form.Set("ssml", req.SSML)
	}
	if req.Lang != "" {
		form.Set("lang", string(req.Lang))
	}
	if req.Voice != "" {
		form.Set("voice", req.Voice)
	}
	if req.Emotion != "" {
		form.Set("emotion", req.Emotion)
	}
	if req.Speed != 0 {
		form.Set("speed", strconv.FormatFloat(req.Speed, 'f', -1, 64))
	}
	if req.Format != "" {
		form.Set("format", req.Format)
	}
	if req.SampleRateHertz != 0 {
		form.Set("sampleRateHertz", strconv.Itoa(int(req.SampleRateHertz)))
	}
	if folderID := s.client.session.FolderID(); folderID != "" {
		form.Set("folderId", folderID)
	}

	endpoint := s.client.config.ttsURL + "/speech/v1/tts:synthesize"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, wrapError(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.client.session.apply(httpReq)

	resp, err := s.client.config.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransport("synthesize", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransport("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newRequestError(resp.StatusCode, body)
	}
	return body, nil
}

// SynthesizeToFile renders the request and writes the audio to path.
func (s *SynthesisService) SynthesizeToFile(ctx context.Context, req *SynthesisRequest, path string) error {
	audio, err := s.Synthesize(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return wrapError(err, "write audio file")
	}
	return nil
}
