// ABOUTME: Tests for input validation, reply truncation, and message text extraction.

package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidInput(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"normal message", "show active proposals", true},
		{"minimum length", "hi", true},
		{"too short", "x", false},
		{"whitespace only", "    ", false},
		{"too long", strings.Repeat("a", 501), false},
		{"exactly max length", strings.Repeat("a", 500), true},
		{"script tag", "hello <SCRIPT>alert(1)</script>", false},
		{"javascript url", "click javascript:void(0)", false},
		{"eval call", "please eval(this)", false},
		{"exec call", "exec(rm -rf)", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidInput(tt.message))
		})
	}
}

func TestTruncateReply(t *testing.T) {
	short := "all good"
	assert.Equal(t, short, TruncateReply(short))

	long := strings.Repeat("x", 1200)
	got := TruncateReply(long)
	assert.True(t, strings.HasSuffix(got, "... (truncated)"))
	assert.Len(t, got, 950+len("... (truncated)"))
}

func TestMessage_TextJoinsTextContent(t *testing.T) {
	msg := Message{Content: []Content{
		{Type: ContentTypeText, Text: "hello"},
		{Type: "resource", Text: "ignored"},
		{Type: ContentTypeText, Text: "world"},
	}}
	assert.Equal(t, "hello world", msg.Text())

	assert.Equal(t, "", Message{}.Text())
}

func TestNewTextMessage(t *testing.T) {
	msg := NewTextMessage("hi there")
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", msg.MsgID.String())
	assert.False(t, msg.Timestamp.IsZero())
	assert.Equal(t, "hi there", msg.Text())
}
