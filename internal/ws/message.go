package ws

import (
	"encoding/json"
	"fmt"
)

// Client -> Server message types
const (
	MsgHandSample uint8 = 0x01
	MsgAction     uint8 = 0x02
	MsgPing       uint8 = 0x04
)

// Server -> Client message types
const (
	MsgSnapshot uint8 = 0x81
	MsgHello    uint8 = 0x82
	MsgPong     uint8 = 0x86
)

type Message struct {
	Type    uint8           `json:"type"`
	Tick    uint32          `json:"tick"`
	Payload json.RawMessage `json:"payload"`
}

// ActionPayload names a control action: start, pause, launch, restart or menu.
type ActionPayload struct {
	Action string `json:"action"`
}

type PingPayload struct {
	ClientTime uint64 `json:"clientTime"`
}

type PongPayload struct {
	ClientTime uint64 `json:"clientTime"`
	ServerTime uint64 `json:"serverTime"`
}

func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}

// Unpack decodes msg's payload into v.
func Unpack(msg Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("message 0x%02x: empty payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("message 0x%02x: %w", msg.Type, err)
	}
	return nil
}

func NewMessage(typ uint8, tick uint32, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:    typ,
		Tick:    tick,
		Payload: json.RawMessage(data),
	}, nil
}
