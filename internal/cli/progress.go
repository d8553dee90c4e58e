package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const progressWidth = 30

var (
	styleBarFilled = lipgloss.NewStyle().Foreground(colorCyan)
	styleBarEmpty  = lipgloss.NewStyle().Foreground(colorDim)
)

// progressBar draws "[█████░░░░░]  12/40  30%" on a single terminal line.
type progressBar struct {
	w     io.Writer
	limit int
	last  string
}

// newProgressBar writes to w. A non-negative limit caps the displayed total.
func newProgressBar(w io.Writer, limit int) *progressBar {
	return &progressBar{w: w, limit: limit}
}

// Update redraws the bar. It matches the batch runner's progress callback.
func (p *progressBar) Update(visited, total int) {
	if p.limit >= 0 && p.limit < total {
		total = p.limit
	}
	line := renderProgress(visited, total, progressWidth)
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintf(p.w, "\r%s", line)
}

// Finish ends the bar's line.
func (p *progressBar) Finish() {
	if p.last != "" {
		fmt.Fprintln(p.w)
	}
}

func renderProgress(visited, total, width int) string {
	ratio := 1.0
	if total > 0 {
		ratio = min(float64(visited)/float64(total), 1)
	}
	filled := int(ratio * float64(width))
	bar := styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("[%s] %*d/%d %3d%%", bar, len(fmt.Sprint(total)), visited, total, int(ratio*100))
}
