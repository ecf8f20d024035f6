package report

import (
	"encoding/json"

	"github.com/damiannass88/WindowsFileMover/pkg/models"
)

// JSONReport wraps a move result with its summary counts
type JSONReport struct {
	*models.MoveResult
	Status     string `json:"status"`
	MovedCount int    `json:"moved_count"`
	Skipped    int    `json:"skipped_count"`
	Failed     int    `json:"failed_count"`
	MovedBytes int64  `json:"moved_bytes"`
}

func renderJSON(result *models.MoveResult) ([]byte, error) {
	report := &JSONReport{
		MoveResult: result,
		Status:     MoveStatus(result),
		MovedCount: result.Count(models.StatusMoved),
		Skipped:    result.Count(models.StatusSkipped),
		Failed:     result.Count(models.StatusFailed),
		MovedBytes: result.MovedBytes(),
	}
	return json.MarshalIndent(report, "", "  ")
}
