package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Console colors
var (
	headerColor  = color.New(color.FgHiYellow, color.Bold)
	labelColor   = color.New(color.FgHiBlack)
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	pathColor    = color.New(color.FgCyan)
	sizeColor    = color.New(color.FgMagenta)
)

const ruler = "───────────────────────────────────────────────────────────────"

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Preview returns at most n messages and how many were left out
func Preview(messages []string, n int) ([]string, int) {
	if n < 0 {
		n = 0
	}
	if len(messages) <= n {
		return messages, 0
	}
	return messages[:n], len(messages) - n
}

// MoveStatus is the one-line outcome of a move
func MoveStatus(result *models.MoveResult) string {
	switch {
	case result.Cancelled:
		return fmt.Sprintf("Move cancelled after %d/%d.", result.Processed, result.Total)
	case len(result.Messages) == 0:
		return "Move completed."
	default:
		return fmt.Sprintf("Move completed with %d error(s).", len(result.Messages))
	}
}

// ScanStatus is the one-line outcome of a scan
func ScanStatus(result *models.ScanResult) string {
	return fmt.Sprintf("Search done. Found: %d file(s).", len(result.Records))
}

// Generator prints console summaries and writes move reports
type Generator struct {
	fs     afero.Fs
	out    io.Writer
	logger *zap.Logger
}

// NewGenerator creates a new report generator writing console output to out
func NewGenerator(fs afero.Fs, out io.Writer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		fs:     fs,
		out:    out,
		logger: logger,
	}
}

// Generate writes a move report in format (txt, json, md) and returns its absolute path.
// An empty outputFile gets a timestamped name in the working directory.
func (g *Generator) Generate(result *models.MoveResult, format, outputFile string) (string, error) {
	var ext string
	switch format {
	case "json":
		ext = "json"
	case "txt", "text":
		ext = "txt"
	case "md", "markdown":
		ext = "md"
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	if outputFile == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputFile = fmt.Sprintf("FILEMOVER-REPORT-%s.%s", timestamp, ext)
	}

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	var data []byte
	var err error
	switch ext {
	case "json":
		data, err = renderJSON(result)
	case "txt":
		data = renderText(result)
	case "md":
		data = renderMarkdown(result)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	if err := afero.WriteFile(g.fs, outputFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s report: %w", format, err)
	}

	absPath, _ := filepath.Abs(outputFile)
	return absPath, nil
}

// PrintScan prints the records of a scan, largest first
func (g *Generator) PrintScan(result *models.ScanResult) {
	fmt.Fprintln(g.out)
	headerColor.Fprintln(g.out, "SCAN COMPLETE")
	fmt.Fprintln(g.out)

	g.field("Path", result.SourceRoot)
	g.field("Dirs", fmt.Sprintf("%d", result.TotalDirs))
	g.field("Files", fmt.Sprintf("%d visited, %d matched", result.TotalFiles, len(result.Records)))
	g.field("Size", models.HumanSize(result.TotalSize))
	g.field("Duration", FormatDuration(result.Duration))
	fmt.Fprintln(g.out)

	if len(result.Records) == 0 {
		warningColor.Fprintln(g.out, "  No matching files")
		fmt.Fprintln(g.out)
		return
	}

	labelColor.Fprintln(g.out, ruler)
	width := len(fmt.Sprint(len(result.Records)))
	for i, r := range result.Records {
		fmt.Fprintf(g.out, "  %*d  %s  %s\n", width, i+1,
			sizeColor.Sprintf("%10s", r.SizeHuman()),
			pathColor.Sprint(r.FullPath))
	}
	labelColor.Fprintln(g.out, ruler)
	fmt.Fprintln(g.out)
	fmt.Fprintln(g.out, ScanStatus(result))
}

// PrintMove prints the move summary with the first preview messages
func (g *Generator) PrintMove(result *models.MoveResult, preview int) {
	fmt.Fprintln(g.out)
	headerColor.Fprintln(g.out, "MOVE COMPLETE")
	fmt.Fprintln(g.out)

	g.field("Destination", result.DestinationRoot)
	g.field("Processed", fmt.Sprintf("%d/%d", result.Processed, result.Total))
	g.field("Moved", fmt.Sprintf("%d (%s)", result.Count(models.StatusMoved), models.HumanSize(result.MovedBytes())))
	g.field("Skipped", fmt.Sprintf("%d", result.Count(models.StatusSkipped)))
	g.field("Failed", fmt.Sprintf("%d", result.Count(models.StatusFailed)))
	g.field("Duration", FormatDuration(result.Duration))
	fmt.Fprintln(g.out)

	if len(result.Messages) == 0 && !result.Cancelled {
		successColor.Fprintf(g.out, "  ✓ %s\n", MoveStatus(result))
		fmt.Fprintln(g.out)
		return
	}

	if result.Cancelled {
		warningColor.Fprintf(g.out, "  %s\n", MoveStatus(result))
	} else {
		errorColor.Fprintf(g.out, "  ⚠ %s\n", MoveStatus(result))
	}

	shown, more := Preview(result.Messages, preview)
	if len(shown) > 0 {
		fmt.Fprintln(g.out)
		labelColor.Fprintln(g.out, ruler)
		for _, msg := range shown {
			fmt.Fprintf(g.out, "  %s\n", msg)
		}
		if more > 0 {
			labelColor.Fprintf(g.out, "  ... (+%d more)\n", more)
		}
		labelColor.Fprintln(g.out, ruler)
	}
	fmt.Fprintln(g.out)
}

func (g *Generator) field(label, value string) {
	labelColor.Fprintf(g.out, "  %-12s", label+":")
	fmt.Fprintf(g.out, " %s\n", value)
}

// cleanReason flattens a reason for single-line output
func cleanReason(reason string, maxLen int) string {
	reason = strings.ReplaceAll(reason, "\n", " ")
	reason = strings.ReplaceAll(reason, "\r", "")
	reason = strings.ReplaceAll(reason, "\t", " ")
	reason = strings.TrimSpace(reason)

	if maxLen > 0 && len(reason) > maxLen {
		reason = reason[:maxLen] + "..."
	}
	return reason
}
