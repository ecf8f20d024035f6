package report

import (
	"fmt"
	"strings"

	"github.com/damiannass88/WindowsFileMover/pkg/models"
)

func renderMarkdown(result *models.MoveResult) []byte {
	var sb strings.Builder

	sb.WriteString("# Filemover Move Report\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Destination | `%s` |\n", result.DestinationRoot))
	sb.WriteString(fmt.Sprintf("| Start Time | %s |\n", result.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(result.Duration)))
	sb.WriteString(fmt.Sprintf("| Processed | %d/%d |\n", result.Processed, result.Total))
	sb.WriteString(fmt.Sprintf("| Moved | %d (%s) |\n", result.Count(models.StatusMoved), models.HumanSize(result.MovedBytes())))
	sb.WriteString(fmt.Sprintf("| Skipped | %d |\n", result.Count(models.StatusSkipped)))
	sb.WriteString(fmt.Sprintf("| **Failed** | **%d** |\n", result.Count(models.StatusFailed)))
	sb.WriteString("\n")

	if len(result.Messages) == 0 && !result.Cancelled {
		sb.WriteString("> ✅ **" + MoveStatus(result) + "**\n\n")
	} else {
		sb.WriteString("> ⚠️ **" + MoveStatus(result) + "**\n\n")
	}

	if len(result.Outcomes) == 0 {
		return []byte(sb.String())
	}

	sb.WriteString("## Files\n\n")
	sb.WriteString("| # | Status | Source | Destination | Size | Reason |\n")
	sb.WriteString("|---|--------|--------|-------------|------|--------|\n")
	for i, o := range result.Outcomes {
		sb.WriteString(fmt.Sprintf("| %d | %s %s | `%s` | %s | %s | %s |\n",
			i+1,
			statusEmoji(o.Status), o.Status,
			escapeMarkdown(o.Source),
			codeOrDash(o.Destination),
			models.HumanSize(o.Size),
			escapeMarkdown(cleanReason(o.Reason, 200))))
	}
	sb.WriteString("\n")

	return []byte(sb.String())
}

func statusEmoji(status models.OutcomeStatus) string {
	switch status {
	case models.StatusMoved:
		return "✅"
	case models.StatusSkipped:
		return "⏭️"
	default:
		return "❌"
	}
}

func codeOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + escapeMarkdown(s) + "`"
}

// escapeMarkdown keeps table cells intact
func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
