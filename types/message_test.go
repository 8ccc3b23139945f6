package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTailWindow(t *testing.T) {
	msgs := make([]Message, 15)
	for i := range msgs {
		msgs[i] = NewAssistantMessage(fmt.Sprintf("msg-%d", i))
	}

	got := TailWindow(msgs, 10)
	assert.Len(t, got, 10)
	// Oldest-first among the kept messages.
	assert.Equal(t, "msg-5", got[0].Content)
	assert.Equal(t, "msg-14", got[9].Content)
}

func TestTailWindow_FitsWindow(t *testing.T) {
	msgs := []Message{NewUserMessage("a"), NewUserMessage("b")}
	got := TailWindow(msgs, 10)
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Content)
}

func TestTailWindow_Empty(t *testing.T) {
	assert.Nil(t, TailWindow(nil, 10))
	assert.Nil(t, TailWindow([]Message{NewUserMessage("x")}, 0))
}
