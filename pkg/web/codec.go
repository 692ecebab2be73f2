package web

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// MarshalEnvelope creates a wire frame from a message type and payload.
func MarshalEnvelope(msgType MessageType, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling payload for %q: %w", msgType, err)
		}
		raw = b
	}
	return sonic.Marshal(Envelope{
		Type:    msgType,
		Payload: raw,
	})
}

// UnmarshalEnvelope parses a wire frame, returning the message type and
// raw payload.
func UnmarshalEnvelope(data []byte) (MessageType, json.RawMessage, error) {
	var env Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("unmarshaling envelope: %w", err)
	}
	if env.Type == "" {
		return "", nil, fmt.Errorf("envelope missing type field")
	}
	return env.Type, env.Payload, nil
}

// UnmarshalPayload decodes a raw payload into a typed struct.
func UnmarshalPayload[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("unmarshaling payload: %w", err)
	}
	return v, nil
}
