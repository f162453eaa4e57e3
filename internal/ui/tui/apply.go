package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/erpdeploy/internal/provisioning"
)

// RunFunc performs a provisioning run, reporting through obs.
type RunFunc func(ctx context.Context, obs provisioning.Observer) (*provisioning.Report, error)

// RunApplyTUI wraps a provisioning run with a Bubble Tea progress view.
// Quitting the view cancels the run; the report of the steps reached so far
// is still returned.
func RunApplyTUI(ctx context.Context, run RunFunc, target, domain string, steps []string, dryRun bool) (*provisioning.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewApplyModel(target, domain, steps, dryRun)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	type outcome struct {
		report *provisioning.Report
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		report, err := run(ctx, NewObserver(p))
		done <- outcome{report, err}
		if err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{Report: report})
	}()

	_, tuiErr := p.Run()
	// stop the run if the view was closed early
	cancel()
	result := <-done

	if tuiErr != nil && result.err == nil && !isCancelled(tuiErr) {
		return result.report, fmt.Errorf("TUI error: %w", tuiErr)
	}
	return result.report, result.err
}

func isCancelled(err error) bool {
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled)
}
