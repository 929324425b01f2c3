package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"atomicgo.dev/cursor"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a single status line while a panel operation is in flight.
// Its text can be changed while it runs, so state transitions show up live.
type spinner struct {
	w        io.Writer
	frames   []string
	interval time.Duration
	hide     bool

	mu   sync.Mutex
	text string

	stop chan struct{}
	wg   sync.WaitGroup
}

func startSpinner(w io.Writer, text string, hideCursor bool) *spinner {
	s := &spinner{
		w:        w,
		frames:   spinnerFrames,
		interval: 80 * time.Millisecond,
		hide:     hideCursor,
		text:     text,
		stop:     make(chan struct{}),
	}
	if s.hide {
		cursor.Hide()
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *spinner) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

func (s *spinner) line(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%s %s", s.frames[i%len(s.frames)], s.text)
}

func (s *spinner) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	i, width := 0, 0
	for {
		select {
		case <-s.stop:
			// clear the spinner line completely
			fmt.Fprintf(s.w, "\r%*s\r", width, "")
			return
		case <-ticker.C:
			l := s.line(i)
			width = max(width, len(l))
			fmt.Fprintf(s.w, "\r%-*s", width, l)
			i++
		}
	}
}

// Stop ends the animation and clears the line. It must be called once.
func (s *spinner) Stop() {
	close(s.stop)
	s.wg.Wait()
	if s.hide {
		cursor.Show()
	}
}
