package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChatRequestCountsCharactersNotBytes(t *testing.T) {
	// 4000 Vietnamese characters occupy 12000 bytes; the limit is on
	// characters, so this is still within bounds.
	atLimit := strings.Repeat("ậ", 4000)
	assert.Empty(t, validateChatRequest(ChatRequest{Message: atLimit, Sender: "Lan"}))
	assert.NotEmpty(t, validateChatRequest(ChatRequest{Message: atLimit + "ậ", Sender: "Lan"}))

	assert.Empty(t, validateChatRequest(ChatRequest{Message: "xin chào", Sender: strings.Repeat("ữ", 255)}))
	assert.NotEmpty(t, validateChatRequest(ChatRequest{Message: "xin chào", Sender: strings.Repeat("ữ", 256)}))
}

func TestValidateChatRequestRejectsEmpty(t *testing.T) {
	assert.NotEmpty(t, validateChatRequest(ChatRequest{Message: "", Sender: "Lan"}))
	assert.NotEmpty(t, validateChatRequest(ChatRequest{Message: "xin chào", Sender: ""}))
}
