package helpers

import (
	"fmt"
	"strings"

	"xui-vpn-bot/internal/constants"
	"xui-vpn-bot/internal/models"
)

// FormatUsageReport formats a per-inbound network usage table
func FormatUsageReport(inbounds []models.Inbound) string {
	var sb strings.Builder
	sb.WriteString("<b>Network Usage Report:</b>\n")
	sb.WriteString("<pre>\n")
	sb.WriteString("Email             | ↓ (GB) | ↑ (GB)\n")
	sb.WriteString("------------------|--------|--------\n")

	var totalUp int64
	var totalDown int64

	for _, inbound := range inbounds {
		if len(inbound.ClientStats) == 0 {
			continue
		}

		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Inbound: %s\n", inbound.Remark))

		for _, stat := range inbound.ClientStats {
			sb.WriteString(FormatTableLine(stat.Email, stat.Down, stat.Up))
			totalDown += stat.Down
			totalUp += stat.Up
		}
	}

	sb.WriteString("\n")
	sb.WriteString(FormatTableLine("Total:", totalDown, totalUp))
	sb.WriteString("</pre>")

	return sb.String()
}

// FormatTraffic formats one traffic sample for display
func FormatTraffic(email string, traffic models.Traffic) string {
	return fmt.Sprintf("<b>%s</b>\n↓ %.2f GB  ↑ %.2f GB  (total %.2f GB)",
		email,
		float64(traffic.Down)/constants.BytesInGB,
		float64(traffic.Up)/constants.BytesInGB,
		float64(traffic.Total)/constants.BytesInGB)
}

// FormatTableLine formats a single line of the usage table
func FormatTableLine(email string, downBytes int64, upBytes int64) string {
	downGB := float64(downBytes) / constants.BytesInGB
	upGB := float64(upBytes) / constants.BytesInGB

	displayEmail := email
	if len(email) > constants.MaxEmailDisplayLength {
		displayEmail = email[:constants.MaxEmailSuffixLength] + "..."
	}

	return fmt.Sprintf("%-17s | %6.2f | %6.2f\n", displayEmail, downGB, upGB)
}
