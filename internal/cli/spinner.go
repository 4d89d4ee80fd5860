package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames is the braille animation cycle rendered on stderr.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerElapsedAfter is how long a transform runs before the indicator
// starts showing elapsed time. Most documents finish well under this;
// large ones hold the transaction open long enough that silence reads
// as a hang.
const spinnerElapsedAfter = 3 * time.Second

// spinner is an activity indicator for the window where the document
// transaction is open and the terminal would otherwise sit silent.
type spinner struct {
	message string
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// startSpinner begins animating immediately and returns the running
// indicator. The animation stops when stop is called or ctx is cancelled.
func startSpinner(ctx context.Context, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		message: message,
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
			label := s.message
			if elapsed := time.Since(s.started); elapsed >= spinnerElapsedAfter {
				label = fmt.Sprintf("%s (%s)", s.message, elapsed.Round(time.Second))
			}
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(label))
		}
	}
}

// stop halts the animation and clears the line. Safe to call more than
// once.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *spinner) clearLine() {
	// Wide enough for the message plus the elapsed-time suffix.
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+16))
}

// success stops the animation and prints a success line in its place.
func (s *spinner) success(message string) {
	s.stop()
	printSuccess("%s", message)
}

// fail stops the animation and prints an error line in its place.
func (s *spinner) fail(message string) {
	s.stop()
	printError("%s", message)
}
