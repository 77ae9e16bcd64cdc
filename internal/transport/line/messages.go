// Package line adapts the platform-neutral bot core to the LINE Messaging
// API: webhook parsing, reply/push delivery, and platform limits.
package line

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

const (
	// maxTextLength is the LINE text message character limit.
	maxTextLength = 5000
	// maxMessagesPerReply is the LINE reply API message limit. Overflow
	// is delivered with push.
	maxMessagesPerReply = 5
)

// capabilities are the formatting capabilities of LINE text messages.
// Plain text only; no emphasis markers.
var capabilities = model.Capabilities{Bold: false}

// toLineMessages converts outgoing messages to LINE text messages,
// truncating any that exceed the platform limit.
func toLineMessages(messages []model.OutgoingMessage) []messaging_api.MessageInterface {
	out := make([]messaging_api.MessageInterface, 0, len(messages))
	for _, m := range messages {
		out = append(out, messaging_api.TextMessage{Text: truncate(m.Text, maxTextLength)})
	}
	return out
}

// splitReplyPush splits messages into the reply batch and the push
// remainder, preserving order.
func splitReplyPush(messages []messaging_api.MessageInterface) (reply, push []messaging_api.MessageInterface) {
	if len(messages) <= maxMessagesPerReply {
		return messages, nil
	}
	return messages[:maxMessagesPerReply], messages[maxMessagesPerReply:]
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
