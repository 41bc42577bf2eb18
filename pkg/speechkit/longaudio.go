package speechkit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vocalhq/speechkit/pkg/objstore"
)

// Stager stages a local audio payload in object storage and produces a
// time-limited fetch URL for the recognition backend. The objstore
// package provides the S3-backed implementation.
type Stager interface {
	Stage(ctx context.Context, localPath string) (*objstore.StagedObject, error)
	Unstage(ctx context.Context, obj *objstore.StagedObject) error
}

var _ Stager = (*objstore.Bucket)(nil)

// jobState is the long-audio job lifecycle.
type jobState int

const (
	jobUnsubmitted jobState = iota
	jobSubmitted
	jobDone
	jobFailed
)

func (s jobState) String() string {
	switch s {
	case jobUnsubmitted:
		return "unsubmitted"
	case jobSubmitted:
		return "submitted"
	case jobDone:
		return "done"
	case jobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LongAudioJob recognizes a long audio fragment through the two-phase
// async contract: submit a staged URL, then poll the operation until it
// is done. A job is single-use and single-owner; concurrent calls
// against the same instance are not supported.
//
// The caller drives the poll loop and chooses its cadence; the job
// never sleeps. Recognizing one minute of single-channel audio takes
// the service roughly ten seconds, so polling more than once every few
// seconds buys nothing. To cancel, simply stop polling; no in-flight
// cancellation is sent.
//
//	job := client.STT.NewLongAudioJob(bucket, speechkit.RecognitionSpec{
//		AudioEncoding:   speechkit.EncodingLinear16PCM,
//		SampleRateHertz: speechkit.SampleRate48000,
//	})
//	if err := job.Submit(ctx, "meeting.pcm"); err != nil { ... }
//	for {
//		done, err := job.Poll(ctx)
//		if err != nil { ... }
//		if done {
//			break
//		}
//		time.Sleep(5 * time.Second)
//	}
//	text, _ := job.RawText()
type LongAudioJob struct {
	client *Client
	stager Stager
	spec   RecognitionSpec

	state  jobState
	id     string
	op     *Operation // terminal payload, set once on the done transition
	staged *objstore.StagedObject
}

// NewLongAudioJob creates an unsubmitted long-audio recognition job.
// The stager uploads the audio and is asked to delete it again once the
// job is done.
func (s *STTService) NewLongAudioJob(stager Stager, spec RecognitionSpec) *LongAudioJob {
	return &LongAudioJob{
		client: s.client,
		stager: stager,
		spec:   spec,
	}
}

// longRunningRequest is the submission body.
type longRunningRequest struct {
	Config struct {
		Specification RecognitionSpec `json:"specification"`
	} `json:"config"`
	Audio struct {
		URI string `json:"uri"`
	} `json:"audio"`
}

// Submit stages the local file and submits the recognition job. A job
// supports at most one submission; any failure is terminal for the job.
func (j *LongAudioJob) Submit(ctx context.Context, localPath string) error {
	if j.state != jobUnsubmitted {
		return &StateError{Op: "submit", State: j.state.String()}
	}

	staged, err := j.stager.Stage(ctx, localPath)
	if err != nil {
		j.state = jobFailed
		return wrapError(err, "stage audio")
	}
	j.staged = staged

	var body longRunningRequest
	body.Config.Specification = j.spec
	body.Audio.URI = staged.URL

	jsonBytes, err := json.Marshal(&body)
	if err != nil {
		j.state = jobFailed
		return wrapError(err, "marshal request body")
	}

	u := j.client.config.transcribeURL + "/speech/stt/v2/longRunningRecognize"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(jsonBytes))
	if err != nil {
		j.state = jobFailed
		return wrapError(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	j.client.session.apply(httpReq)

	resp, err := j.client.config.httpClient.Do(httpReq)
	if err != nil {
		j.state = jobFailed
		return wrapTransport("submit", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		j.state = jobFailed
		return wrapTransport("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		j.state = jobFailed
		return newRequestError(resp.StatusCode, respBody)
	}

	var op Operation
	if err := json.Unmarshal(respBody, &op); err != nil {
		j.state = jobFailed
		return wrapError(err, "unmarshal response")
	}
	if op.ID == "" {
		j.state = jobFailed
		return newRequestError(resp.StatusCode, respBody)
	}

	j.id = op.ID
	j.state = jobSubmitted
	return nil
}

// Poll checks the operation once and reports whether the job is done.
// On the done transition the terminal payload is stored and the staged
// object is deleted best-effort: a deletion failure is logged and
// ignored, since the result contract is already satisfied. A failed
// poll round trip leaves the job submitted so the caller may poll
// again.
func (j *LongAudioJob) Poll(ctx context.Context) (bool, error) {
	if j.state != jobSubmitted {
		return false, &StateError{Op: "poll", State: j.state.String()}
	}

	u := j.client.config.operationURL + "/operations/" + j.id
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, wrapError(err, "create request")
	}
	j.client.session.apply(httpReq)

	resp, err := j.client.config.httpClient.Do(httpReq)
	if err != nil {
		return false, wrapTransport("poll", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, wrapTransport("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, newRequestError(resp.StatusCode, respBody)
	}

	var op Operation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return false, wrapError(err, "unmarshal response")
	}
	if !op.Done {
		return false, nil
	}

	j.op = &op
	j.state = jobDone
	j.unstage(ctx)
	return true, nil
}

// unstage deletes the staged object exactly once.
func (j *LongAudioJob) unstage(ctx context.Context) {
	if j.staged == nil {
		return
	}
	if err := j.stager.Unstage(ctx, j.staged); err != nil {
		j.client.config.logger.Warn("staged object cleanup failed",
			"bucket", j.staged.Bucket, "key", j.staged.Key, "err", err)
	}
	j.staged = nil
}

// ID returns the operation ID assigned at submission, empty before.
func (j *LongAudioJob) ID() string {
	return j.id
}

// Done reports whether the job has reached its done state.
func (j *LongAudioJob) Done() bool {
	return j.state == jobDone
}

// Results returns the parsed chunk list of the terminal payload, one or
// more entries per audio channel. A nil slice means the service omitted
// results, e.g. for silent audio.
func (j *LongAudioJob) Results() ([]Chunk, error) {
	if j.state != jobDone {
		return nil, &StateError{Op: "results", State: j.state.String()}
	}
	if j.op.Response == nil {
		return nil, nil
	}
	return j.op.Response.Chunks, nil
}

// RawText flattens the terminal payload: the first alternative's text
// of every chunk, concatenated in arrival order with no separator.
func (j *LongAudioJob) RawText() (string, error) {
	chunks, err := j.Results()
	if err != nil {
		return "", &StateError{Op: "raw text", State: j.state.String()}
	}

	var sb strings.Builder
	for _, chunk := range chunks {
		if len(chunk.Alternatives) == 0 {
			continue
		}
		sb.WriteString(chunk.Alternatives[0].Text)
	}
	return sb.String(), nil
}

// Operation returns the terminal payload of a done job.
func (j *LongAudioJob) Operation() (*Operation, error) {
	if j.state != jobDone {
		return nil, &StateError{Op: "operation", State: j.state.String()}
	}
	return j.op, nil
}
