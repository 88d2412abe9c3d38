package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const barWidth = 20

// Progress is a single counter spanning every file of one creator's
// download phase. It is safe for concurrent use.
type Progress struct {
	mu        sync.Mutex
	out       io.Writer
	label     string
	total     int
	done      int
	failed    int
	bytes     int64
	startTime time.Time
	quiet     bool
}

// NewProgress creates a progress line for total items. A nil writer
// keeps counting without printing.
func NewProgress(out io.Writer, label string, total int) *Progress {
	return &Progress{
		out:       out,
		label:     label,
		total:     total,
		startTime: time.Now(),
		quiet:     out == nil,
	}
}

// Advance counts one processed item. Failed items still advance the bar.
func (p *Progress) Advance(size int64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if err != nil {
		p.failed++
	} else {
		p.bytes += size
	}
	p.render()
}

// Finish ends the progress line
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.quiet {
		p.render()
		fmt.Fprintln(p.out)
	}
}

// Counts returns processed and failed item counts
func (p *Progress) Counts() (done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.failed
}

func (p *Progress) render() {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "\r%s", p.line())
}

func (p *Progress) line() string {
	filled := 0
	if p.total > 0 {
		filled = p.done * barWidth / p.total
		if filled > barWidth {
			filled = barWidth
		}
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d • %s • %s",
		Cyan(p.label), bar, p.done, p.total, FormatBytes(p.bytes), FormatDuration(time.Since(p.startTime)))
	if p.failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", p.failed))
	}
	return line
}

// FormatBytes renders a byte count for humans
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatDuration renders an elapsed duration as m:ss or h:mm:ss
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
