package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// Messages shown while a request is in flight
const (
	GeneratingMessage = "Generating command"
	RefiningMessage   = "Refining command"
)

// Presenter renders progress and candidate commands on the diagnostic stream.
// It implements session.View.
type Presenter struct {
	out         io.Writer
	interactive bool
	showDiff    bool

	spinner     *pterm.SpinnerPrinter
	mu          sync.Mutex
	timerCancel context.CancelFunc
	timerWG     sync.WaitGroup
}

// PresenterOption configures a Presenter
type PresenterOption func(*Presenter)

// WithDiff highlights what changed between successive commands
func WithDiff(enabled bool) PresenterOption {
	return func(p *Presenter) { p.showDiff = enabled }
}

// WithInteractive enables the animated spinner. Without it a plain status line
// is printed, which keeps redirected stderr readable.
func WithInteractive(enabled bool) PresenterOption {
	return func(p *Presenter) { p.interactive = enabled }
}

// NewPresenter creates a new Presenter writing to out.
func NewPresenter(out io.Writer, opts ...PresenterOption) *Presenter {
	p := &Presenter{out: out, showDiff: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generating starts the loading indicator for the given turn count.
func (p *Presenter) Generating(turn int) func(err error) {
	message := GeneratingMessage
	if turn > 1 {
		message = RefiningMessage
	}

	if !p.interactive {
		fmt.Fprintf(p.out, "%s...\n", message)
		return func(error) {}
	}

	if err := p.ShowLoadingWithTimer(message); err != nil {
		fmt.Fprintf(p.out, "%s...\n", message)
		return func(error) {}
	}
	return func(err error) { p.StopLoading(err == nil) }
}

// ShowCommand presents a candidate command.
func (p *Presenter) ShowCommand(previous, current string) {
	title := "Generated Command"
	if previous != "" {
		title = "Refined Command"
	}

	section := pterm.DefaultSection.WithWriter(p.out).WithLevel(2)
	section.Println(title)

	body := pterm.LightGreen(current)
	if p.showDiff && previous != "" && previous != current {
		body = HighlightChanges(previous, current)
	}
	fmt.Fprintln(p.out, "  "+body)
	fmt.Fprintln(p.out)
}

// ShowLoadingWithTimer displays a spinner with a message and time counter.
func (p *Presenter) ShowLoadingWithTimer(baseMessage string) error {
	p.mu.Lock()

	// 先停掉前一個 spinner 與計時器，避免輸出重疊
	p.stopLocked()

	spinner := *pterm.DefaultSpinner.
		WithShowTimer(false).
		WithRemoveWhenDone(true).
		WithWriter(p.out)
	spinner.Sequence = []string{"▀", "▄", "█", "▐", "▌", "▀", "▄", "█"}

	sp, err := spinner.Start(fmt.Sprintf("%s...", baseMessage))
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to start spinner: %w", err)
	}
	p.spinner = sp

	ctx, cancel := context.WithCancel(context.Background())
	p.timerCancel = cancel
	start := time.Now()
	p.timerWG.Add(1)
	p.mu.Unlock()

	go func(spinnerPtr *pterm.SpinnerPrinter, startAt time.Time, label string, ctx context.Context) {
		defer p.timerWG.Done()

		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		lastSec := -1
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				elapsedSec := int(time.Since(startAt).Seconds())
				if elapsedSec != lastSec {
					spinnerPtr.UpdateText(fmt.Sprintf("%s... (%ds)", label, elapsedSec))
					lastSec = elapsedSec
				}
			}
		}
	}(sp, start, baseMessage, ctx)

	return nil
}

// StopLoading stops the spinner.
func (p *Presenter) StopLoading(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timerCancel != nil {
		p.timerCancel()
		p.timerWG.Wait()
		p.timerCancel = nil
	}
	if p.spinner == nil {
		return
	}
	if success {
		_ = p.spinner.Stop()
	} else {
		p.spinner.Fail()
	}
	p.spinner = nil
}

func (p *Presenter) stopLocked() {
	if p.timerCancel != nil {
		p.timerCancel()
		p.timerWG.Wait()
		p.timerCancel = nil
	}
	if p.spinner != nil {
		_ = p.spinner.Stop()
		p.spinner = nil
	}
}
