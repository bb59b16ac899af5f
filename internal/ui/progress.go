package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// ProgressBar renders a terminal progress bar for downloads. On a TTY
// it redraws in place; otherwise it prints a line every 10%.
type ProgressBar struct {
	out        io.Writer
	total      int64
	current    int64
	start      time.Time
	lastDraw   time.Time
	lastPct    float64
	isTTY      bool
	indent     string
}

// NewProgressBar creates a bar for total bytes. total <= 0 shows a raw
// byte counter without a percentage.
func NewProgressBar(out io.Writer, total int64) *ProgressBar {
	if out == nil {
		out = os.Stdout
	}
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &ProgressBar{
		out:     out,
		total:   total,
		start:   time.Now(),
		lastPct: -1,
		isTTY:   isTTY,
		indent:  "  ",
	}
}

// Update redraws the bar for the current byte count. TTY redraws are
// rate limited to avoid flicker.
func (p *ProgressBar) Update(current int64) {
	p.current = current

	now := time.Now()
	if p.isTTY && now.Sub(p.lastDraw) < 100*time.Millisecond {
		return
	}
	p.lastDraw = now

	if p.total <= 0 {
		fmt.Fprintf(p.out, "\r%sDownloading... %s", p.indent, FormatBytes(uint64(current)))
		return
	}

	pct := float64(current) / float64(p.total) * 100
	if p.isTTY {
		p.draw(pct)
		return
	}
	// non-TTY: a line per 10% step
	threshold := float64(int(pct/10) * 10)
	if threshold > p.lastPct {
		p.lastPct = threshold
		fmt.Fprintf(p.out, "%sDownloading... %.0f%%\n", p.indent, threshold)
	}
}

// Finish completes the bar and moves to the next line on a TTY.
func (p *ProgressBar) Finish() {
	if p.total > 0 {
		p.lastDraw = time.Time{}
		p.Update(p.total)
	}
	if p.isTTY {
		fmt.Fprintln(p.out)
	}
}

func (p *ProgressBar) draw(pct float64) {
	elapsed := time.Since(p.start).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(p.current) / elapsed
	}

	const barWidth = 30
	filled := int(pct / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := ""
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}

	eta := "--"
	if speed > 0 && p.current < p.total {
		eta = FormatDuration(time.Duration(float64(p.total-p.current)/speed) * time.Second)
	} else if p.current >= p.total {
		eta = "0s"
	}

	// \033[K clears to end of line so shrinking stats don't leave junk
	fmt.Fprintf(p.out, "\r%s[%s] %5.1f%%  %s/%s  %s/s  ETA %s\033[K",
		p.indent, bar, pct,
		FormatBytes(uint64(p.current)), FormatBytes(uint64(p.total)),
		FormatBytes(uint64(speed)), eta)
}
