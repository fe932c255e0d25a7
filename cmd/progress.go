package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// progressPrinter renders a single-line progress readout on stdout while
// multiple targets are being analyzed.
type progressPrinter struct {
	total    int
	mu       sync.Mutex
	done     int
	failed   int
	duration float64
	updates  chan struct{}
	quit     chan struct{}
	stopOnce sync.Once
}

func newProgressPrinter(total int) *progressPrinter {
	if total <= 0 {
		total = 1
	}
	return &progressPrinter{
		total:   total,
		updates: make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

func (p *progressPrinter) Start() {
	go p.loop()
}

// Increment records one finished target. Non-blocking so analysis goroutines
// never wait on the terminal.
func (p *progressPrinter) Increment(success bool, duration float64) {
	p.mu.Lock()
	if success {
		p.done++
	} else {
		p.failed++
	}
	p.duration += duration
	p.mu.Unlock()

	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", 80))
	p.print()
	fmt.Fprintln(os.Stdout)
}

func (p *progressPrinter) loop() {
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.updates:
			p.print()
		case <-ticker.C:
			p.print()
		case <-p.quit:
			return
		}
	}
}

func (p *progressPrinter) print() {
	p.mu.Lock()
	done := p.done
	failed := p.failed
	dur := p.duration
	p.mu.Unlock()

	completed := done + failed
	if completed > p.total {
		p.total = completed
	}

	percent := (float64(completed) / float64(p.total)) * 100
	avg := 0.0
	if completed > 0 {
		avg = dur / float64(completed)
	}

	line := fmt.Sprintf("\rAnalyzing: %d/%d (%.1f%%) OK:%d Fail:%d Avg:%.2fs",
		completed, p.total, percent, done, failed, avg)
	fmt.Fprintf(os.Stdout, "%s", line)
}
