package report

import (
	"fmt"
	"strings"

	"github.com/damiannass88/WindowsFileMover/pkg/models"
)

func renderText(result *models.MoveResult) []byte {
	var sb strings.Builder

	sb.WriteString("=" + strings.Repeat("=", 78) + "\n")
	sb.WriteString("  FILEMOVER MOVE REPORT\n")
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n\n")

	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Destination:      %s\n", result.DestinationRoot))
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", result.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("End Time:         %s\n", result.EndTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(result.Duration)))
	sb.WriteString(fmt.Sprintf("Processed:        %d/%d\n", result.Processed, result.Total))
	sb.WriteString(fmt.Sprintf("Moved:            %d (%s)\n", result.Count(models.StatusMoved), models.HumanSize(result.MovedBytes())))
	sb.WriteString(fmt.Sprintf("Skipped:          %d\n", result.Count(models.StatusSkipped)))
	sb.WriteString(fmt.Sprintf("Failed:           %d\n", result.Count(models.StatusFailed)))
	sb.WriteString(fmt.Sprintf("Status:           %s\n", MoveStatus(result)))
	sb.WriteString("\n")

	if len(result.Outcomes) > 0 {
		sb.WriteString("FILES\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for i, o := range result.Outcomes {
			sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, strings.ToUpper(string(o.Status))))
			sb.WriteString(fmt.Sprintf("    From:   %s\n", o.Source))
			if o.Destination != "" {
				sb.WriteString(fmt.Sprintf("    To:     %s\n", o.Destination))
			}
			sb.WriteString(fmt.Sprintf("    Size:   %s\n", models.HumanSize(o.Size)))
			if o.Renamed {
				sb.WriteString("    Note:   renamed to avoid a conflict\n")
			}
			if o.Reason != "" {
				sb.WriteString(fmt.Sprintf("    Reason: %s\n", cleanReason(o.Reason, 0)))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString(strings.Repeat("=", 79) + "\n")
	return []byte(sb.String())
}
