package telegram

import (
	"fmt"
	"strings"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/notify"
)

// chatMap routes platform agent ids to Telegram chat ids.
type chatMap map[int64]int64

func (m chatMap) lookup(agentID int64) (int64, bool) {
	if agentID == 0 {
		return 0, false
	}
	chatID, ok := m[agentID]
	return chatID, ok
}

func formatNotification(n notify.Notification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dispute %s: %s", n.DisputeID, n.Message)
	if n.URL != "" {
		sb.WriteString("\n")
		sb.WriteString(n.URL)
	}
	return sb.String()
}

// chunkMessage splits a message into chunks that fit within Telegram's message size limit.
func chunkMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		// Try to split at a newline
		cutAt := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/2 {
			cutAt = idx + 1
		}

		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}

	return chunks
}
