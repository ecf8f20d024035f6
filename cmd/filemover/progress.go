package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const barWidth = 30

var barColor = color.New(color.FgHiYellow)

// progressBar prints scan and move progress on the console.
// On a terminal it redraws one line in place, otherwise it prints each new status.
type progressBar struct {
	out        io.Writer
	label      string
	inPlace    bool
	lastStatus string
	open       bool
}

func newProgressBar(out io.Writer, label string) *progressBar {
	return &progressBar{
		out:     out,
		label:   label,
		inPlace: isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *progressBar) Report(count, total int, status string) {
	if !p.inPlace {
		if status != "" && status != p.lastStatus {
			fmt.Fprintf(p.out, "  %s\n", status)
			p.lastStatus = status
		}
		return
	}

	if total == 0 {
		if status != "" {
			fmt.Fprintf(p.out, "\r\033[K  %s", grayColor.Sprint(status))
			p.open = true
		}
		return
	}

	filled := barWidth * count / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	pct := float64(count) / float64(total) * 100
	fmt.Fprintf(p.out, "\r\033[K  %s [%s] %s (%d/%d)",
		grayColor.Sprintf("%-9s", p.label+":"), barColor.Sprint(bar), barColor.Sprintf("%.1f%%", pct), count, total)
	p.open = true

	if count == total {
		p.Done()
	}
}

// Done ends an in-place line so later output starts fresh
func (p *progressBar) Done() {
	if p.open {
		fmt.Fprintln(p.out)
		p.open = false
	}
}
