package speechkit

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StreamingSession is a live bidirectional recognition session. Audio
// is pushed with SendAudio while results arrive through Results; the
// two directions are independent, so recognition of early audio can be
// consumed while later audio is still being sent.
//
// A session is single-use. After CloseSend or Close it cannot be
// reopened; open a new one instead.
//
//	session, err := client.STT.OpenStream(ctx, &speechkit.StreamingConfig{
//		LanguageCode:    speechkit.LanguageRuRU,
//		PartialResults:  true,
//		AudioEncoding:   speechkit.EncodingLinear16PCM,
//		SampleRateHertz: speechkit.SampleRate16000,
//	})
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	go func() {
//		for chunk := range chunks {
//			session.SendAudio(chunk)
//		}
//		session.CloseSend()
//	}()
//
//	for result, err := range session.Results() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(result.Alternatives[0])
//	}
type StreamingSession struct {
	conn   *websocket.Conn
	client *Client

	// recvChan is unbuffered past a single slot so results are yielded
	// strictly in arrival order and a slow consumer backpressures the
	// reader instead of results piling up.
	recvChan  chan *StreamingResult
	errChan   chan error
	closeChan chan struct{}
	closeOnce sync.Once

	writeMu  sync.Mutex
	sendDone bool
}

// streamingHandshake is the first message on the wire, before any
// audio.
type streamingHandshake struct {
	Config struct {
		Specification StreamingConfig `json:"specification"`
		FolderID      string          `json:"folderId,omitempty"`
	} `json:"config"`
}

// streamingServerMessage is one recognition message from the service.
type streamingServerMessage struct {
	Chunks []struct {
		Alternatives []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
		Final          bool `json:"final"`
		EndOfUtterance bool `json:"endOfUtterance"`
	} `json:"chunks"`
}

// OpenStream dials the streaming recognition endpoint and performs the
// session handshake. The handshake carries the full recognition
// configuration and is sent exactly once, before any audio.
func (s *STTService) OpenStream(ctx context.Context, config *StreamingConfig) (*StreamingSession, error) {
	if config == nil {
		return nil, newValidationError("streaming config is required")
	}

	endpoint := s.client.config.streamURL + "/speech/stt/v2/streamingRecognize"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, s.client.session.wsHeader())
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode == 401 || resp.StatusCode == 403 {
				return nil, newAuthError(resp.StatusCode, body)
			}
			return nil, newRequestError(resp.StatusCode, body)
		}
		return nil, wrapTransport("dial", err)
	}

	session := &StreamingSession{
		conn:      conn,
		client:    s.client,
		recvChan:  make(chan *StreamingResult, 1),
		errChan:   make(chan error, 1),
		closeChan: make(chan struct{}),
	}

	if err := session.sendHandshake(config, s.client.session.FolderID()); err != nil {
		session.Close()
		return nil, wrapTransport("handshake", err)
	}
	s.client.config.logger.Debug("streaming session opened",
		"endpoint", endpoint, "language", string(config.LanguageCode))

	go session.receiveLoop()

	return session, nil
}

// Recognize runs a whole streaming session over a chunk producer. It
// opens a session, relays every chunk the producer yields, half-closes
// once the producer is exhausted and returns the lazy result sequence.
// The session is torn down when the consumer stops iterating.
//
//	results := client.STT.Recognize(ctx, config, func(yield func([]byte) bool) {
//		for _, chunk := range chunks {
//			if !yield(chunk) {
//				return
//			}
//		}
//	})
//	for result, err := range results {
//		...
//	}
//
// Callers that need direct control over send pacing and half-close
// timing use [STTService.OpenStream] instead.
func (s *STTService) Recognize(ctx context.Context, config *StreamingConfig, audio iter.Seq[[]byte]) iter.Seq2[*StreamingResult, error] {
	return func(yield func(*StreamingResult, error) bool) {
		session, err := s.OpenStream(ctx, config)
		if err != nil {
			yield(nil, err)
			return
		}
		defer session.Close()

		sendErr := make(chan error, 1)
		go func() {
			defer session.CloseSend()
			for chunk := range audio {
				if err := session.SendAudio(chunk); err != nil {
					sendErr <- err
					return
				}
			}
			sendErr <- nil
		}()

		sawErr := false
		for result, err := range session.Results() {
			if err != nil {
				sawErr = true
			}
			if !yield(result, err) {
				return
			}
		}
		// A send failure usually also kills the receive side; only
		// report it here when the results ended without one.
		if err := <-sendErr; err != nil && !sawErr {
			yield(nil, err)
		}
	}
}

func (s *StreamingSession) sendHandshake(config *StreamingConfig, folderID string) error {
	var hs streamingHandshake
	hs.Config.Specification = *config
	hs.Config.FolderID = folderID

	data, err := json.Marshal(&hs)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// SendAudio pushes one audio chunk into the session. Chunks are
// forwarded as-is; the caller controls their size and pacing.
func (s *StreamingSession) SendAudio(audio []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.sendDone {
		return &StateError{Op: "send audio", State: "send closed"}
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return wrapTransport("send audio", err)
	}
	return nil
}

// CloseSend half-closes the session: no more audio will follow, but
// results for audio already sent keep arriving until the service
// finishes.
func (s *StreamingSession) CloseSend() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.sendDone {
		return nil
	}
	s.sendDone = true

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second)); err != nil {
		return wrapTransport("close send", err)
	}
	return nil
}

// Results returns an iterator over recognition results in arrival
// order. The sequence ends when the service completes the session; a
// transport or service failure is yielded as the final element, after
// every result received before it. Results consumed before a failure
// stand on their own.
func (s *StreamingSession) Results() iter.Seq2[*StreamingResult, error] {
	return func(yield func(*StreamingResult, error) bool) {
		for {
			select {
			case result, ok := <-s.recvChan:
				if !ok {
					// Drain a trailing error before reporting a clean end.
					select {
					case err := <-s.errChan:
						yield(nil, err)
					default:
					}
					return
				}
				if !yield(result, nil) {
					return
				}
			case <-s.closeChan:
				return
			}
		}
	}
}

// Close tears the session down. Safe to call more than once and after
// CloseSend.
func (s *StreamingSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		s.conn.Close()
	})
	return nil
}

func (s *StreamingSession) receiveLoop() {
	defer close(s.recvChan)

	for {
		select {
		case <-s.closeChan:
			return
		default:
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			select {
			case s.errChan <- wrapTransport("receive", err):
			default:
			}
			return
		}

		var msg streamingServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			select {
			case s.errChan <- wrapError(err, "decode result"):
			default:
			}
			return
		}

		s.client.config.logger.Debug("streaming message", "chunks", len(msg.Chunks))

		// One result per message, read from its first chunk slot.
		// A message with no chunks carries nothing to report and is
		// skipped.
		if len(msg.Chunks) == 0 {
			continue
		}
		chunk := msg.Chunks[0]
		result := &StreamingResult{
			Final:          chunk.Final,
			EndOfUtterance: chunk.EndOfUtterance,
		}
		for _, alt := range chunk.Alternatives {
			result.Alternatives = append(result.Alternatives, alt.Text)
		}

		select {
		case s.recvChan <- result:
		case <-s.closeChan:
			return
		}
	}
}
