package tui

import (
	"context"
	"fmt"

	"leakctl/internal/harness"
	"leakctl/internal/suite"
	"leakctl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// Run executes suites while displaying their progress. It returns once the
// user quits and the run has stopped.
func Run(ctx context.Context, suites []*suite.Suite, opts suite.RunOptions, logChannel <-chan logging.LogEntry) (*harness.SuiteResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(opts.Strategy, cancel, logChannel)
	p := tea.NewProgram(m, tea.WithAltScreen())

	listeners := opts.Listeners
	opts.Listeners = func(r *harness.Runner) {
		r.OnModuleStart(func(name string) { p.Send(moduleStartMsg(name)) })
		r.OnTestEnd(func(res harness.TestRunResult) { p.Send(testEndMsg(res)) })
		if listeners != nil {
			listeners(r)
		}
	}

	type outcome struct {
		result *harness.SuiteResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := suite.Run(ctx, suites, opts)
		done <- outcome{result, err}
		p.Send(runDoneMsg{result: result, err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	// The program may exit before the run returns when the user quits.
	cancel()
	out := <-done
	return out.result, out.err
}
