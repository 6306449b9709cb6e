package control

import (
	"errors"
	"fmt"
	"math"

	"ambient/internal/installation"
)

// MessageType indicates the websocket frame format.
type MessageType int

const (
	JSONMessage MessageType = iota
	BinaryMessage
)

// Message is one broadcast frame.
type Message struct {
	Type MessageType
	Data []byte
}

func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// Point is a normalized image coordinate as sent by a hand tracker.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PoseMessage is one tracker report on /ws/pose:
//
//	{"type":"hand","index":{"x":0.4,"y":0.6},"thumb":{"x":0.45,"y":0.62}}
//	{"type":"none"}
type PoseMessage struct {
	Type  string `json:"type"`
	Index *Point `json:"index,omitempty"`
	Thumb *Point `json:"thumb,omitempty"`
}

var ErrBadPose = errors.New("bad pose message")

// Event converts the message into a tracker report.
func (m PoseMessage) Event() (installation.PoseEvent, error) {
	switch m.Type {
	case "none":
		return installation.NoHand, nil
	case "hand":
		if m.Index == nil || m.Thumb == nil {
			return installation.PoseEvent{}, fmt.Errorf("%w: hand needs index and thumb", ErrBadPose)
		}
		for _, v := range []float64{m.Index.X, m.Index.Y, m.Thumb.X, m.Thumb.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return installation.PoseEvent{}, fmt.Errorf("%w: non-finite coordinate", ErrBadPose)
			}
		}
		return installation.HandPose(installation.HandLandmarks{
			IndexTip: installation.Point{X: m.Index.X, Y: m.Index.Y},
			ThumbTip: installation.Point{X: m.Thumb.X, Y: m.Thumb.Y},
		}), nil
	}
	return installation.PoseEvent{}, fmt.Errorf("%w: unknown type %q", ErrBadPose, m.Type)
}

// MuteRequest is the optional body of POST /api/mute. A nil Muted flips.
type MuteRequest struct {
	Muted *bool `json:"muted"`
}

// ShapeInfo describes one selectable shape.
type ShapeInfo struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Track string `json:"track"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
