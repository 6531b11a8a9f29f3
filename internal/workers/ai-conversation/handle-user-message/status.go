// internal/workers/ai-conversation/handle-user-message/status.go
package handleusermessage

import (
	"fmt"
	"strings"
	"time"

	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"
)

// RenderStatus formats the counters and per-model availability.
func RenderStatus(snap metrics.Snapshot, available func(models.ModelID) bool) string {
	var b strings.Builder

	b.WriteString("📊 **Статистика бота**\n\n")
	fmt.Fprintf(&b, "⏱️ **Время работы:** %s\n", formatUptime(snap.Uptime))
	fmt.Fprintf(&b, "💬 **Обработано сообщений:** %d\n", snap.MessagesProcessed)
	for _, m := range models.ModelPreference {
		fmt.Fprintf(&b, "%s **Запросов к %s:** %d\n", m.Badge(), m.DisplayName(), snap.ModelRequests[string(m)])
	}
	fmt.Fprintf(&b, "❌ **Ошибок:** %d\n\n", snap.Errors)

	b.WriteString("🔧 **Статус моделей:**\n")
	for _, m := range models.ModelPreference {
		state := "❌ Недоступна"
		if available(m) {
			state = "✅ Активна"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", m.Badge(), m.DisplayName(), state)
	}

	return b.String()
}

// formatUptime renders d as "H:MM:SS", prefixed with days when over 24h.
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour

	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	if days > 0 {
		return fmt.Sprintf("%d дн. %d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
