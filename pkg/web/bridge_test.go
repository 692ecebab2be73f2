package web

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDeliversCorrelatedReply(t *testing.T) {
	c := NewConn(nil)
	ch := c.register("r1")

	c.resolve(json.RawMessage(`{"id":"r1","ok":true}`))

	select {
	case raw := <-ch:
		p, err := UnmarshalPayload[ConfirmResultPayload](raw)
		require.NoError(t, err)
		assert.True(t, p.OK)
	default:
		t.Fatal("reply was not delivered")
	}
}

func TestResolveDuplicateReplyDoesNotBlock(t *testing.T) {
	c := NewConn(nil)
	ch := c.register("r1")

	// Nobody is reading yet; both calls must return immediately.
	c.resolve(json.RawMessage(`{"id":"r1","ok":true}`))
	c.resolve(json.RawMessage(`{"id":"r1","ok":false}`))

	raw := <-ch
	p, err := UnmarshalPayload[ConfirmResultPayload](raw)
	require.NoError(t, err)
	assert.True(t, p.OK)

	select {
	case <-ch:
		t.Fatal("duplicate reply was buffered")
	default:
	}
}

func TestResolveUnknownIDIsDropped(t *testing.T) {
	c := NewConn(nil)
	ch := c.register("known")

	c.resolve(json.RawMessage(`{"id":"unknown","ok":true}`))
	c.resolve(json.RawMessage(`{"ok":true}`))

	select {
	case <-ch:
		t.Fatal("reply delivered to wrong waiter")
	default:
	}
}
