package speakerid

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// StreamSession is a streaming recognition session against the remote
// scoring service. Audio is sent as binary PCM frames; the service replies
// with one JSON result after the session is finished.
type StreamSession struct {
	conn *websocket.Conn
}

type streamStart struct {
	SampleRate int `json:"sample_rate"`
}

type streamFinish struct {
	EOS bool `json:"eos"`
}

// RecognizeStream opens a streaming recognition session. The caller sends
// PCM frames with [StreamSession.Send] and obtains the result with
// [StreamSession.Finish]. The session must be closed with
// [StreamSession.Close].
//
// This is the surface for library consumers that capture audio
// incrementally (live microphones, telephony frames) and want a result
// without buffering the whole utterance. [Engine.Recognize] does not use
// it: batch recognition of a complete clip goes through [RemoteBackend]'s
// single-shot scoring call.
func (b *RemoteBackend) RecognizeStream(ctx context.Context, sampleRate int) (*StreamSession, error) {
	endpoint := strings.Replace(b.baseURL, "http", "ws", 1) + "/v1/recognize/stream"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, backendErr("dial stream", err)
	}
	if err := conn.WriteJSON(streamStart{SampleRate: sampleRate}); err != nil {
		conn.Close()
		return nil, backendErr("start stream", err)
	}
	return &StreamSession{conn: conn}, nil
}

// Send transmits one chunk of raw PCM16LE audio.
func (s *StreamSession) Send(audio []byte) error {
	if len(audio) == 0 {
		return nil
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return backendErr("send audio frame", err)
	}
	return nil
}

// Finish signals end of audio and waits for the recognition result.
func (s *StreamSession) Finish() (*Result, error) {
	if err := s.conn.WriteJSON(streamFinish{EOS: true}); err != nil {
		return nil, backendErr("finish stream", err)
	}
	var resp recognizeResponse
	if err := s.conn.ReadJSON(&resp); err != nil {
		return nil, backendErr("read stream result", err)
	}
	if resp.OwnerID == "" {
		return nil, backendErr("recognize stream", fmt.Errorf("service returned no owner"))
	}
	return &Result{OwnerID: resp.OwnerID, Confidence: resp.Confidence, Scores: resp.Scores}, nil
}

// Close closes the session connection.
func (s *StreamSession) Close() error {
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")) //nolint:errcheck
	return s.conn.Close()
}
