package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSenderLabel(t *testing.T) {
	assert.Equal(t, "You", SenderUser.Label())
	assert.Equal(t, "Chatbot", SenderBot.Label())
	assert.Equal(t, "System", SenderSystem.Label())
	assert.Equal(t, "Chatbot", Sender("unknown").Label())
}

func TestGatewayErrorPrefersServerMessage(t *testing.T) {
	err := &GatewayError{StatusCode: 400, Message: "No audio provided"}
	assert.Equal(t, "No audio provided", err.Error())
}

func TestGatewayErrorFallsBackToStatus(t *testing.T) {
	err := &GatewayError{StatusCode: 502}
	assert.Equal(t, "chat service returned status 502", err.Error())
}
