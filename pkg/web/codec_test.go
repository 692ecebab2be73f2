package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	data, err := MarshalEnvelope(TypeAlert, AlertPayload{Message: "careful"})
	require.NoError(t, err)

	msgType, raw, err := UnmarshalEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, TypeAlert, msgType)

	p, err := UnmarshalPayload[AlertPayload](raw)
	require.NoError(t, err)
	assert.Equal(t, "careful", p.Message)
}

func TestMarshalEnvelopeWithoutPayload(t *testing.T) {
	data, err := MarshalEnvelope(TypeTranscriptClear, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"transcript_clear"}`, string(data))
}

func TestUnmarshalEnvelopeMissingType(t *testing.T) {
	_, _, err := UnmarshalEnvelope([]byte(`{"payload":{"message":"hi"}}`))
	assert.Error(t, err)
}

func TestUnmarshalEnvelopeMalformed(t *testing.T) {
	_, _, err := UnmarshalEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestUnmarshalPayloadTypeMismatch(t *testing.T) {
	_, err := UnmarshalPayload[ConfirmResultPayload]([]byte(`{"ok":"yes"}`))
	assert.Error(t, err)
}
