package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/scanwalk/internal/walkengine"
)

// Run walks with engine while showing the progress view, and returns once
// both the walk and the view have finished. Options are passed to the
// bubbletea program (e.g. tea.WithOutput for tests).
func Run(ctx context.Context, engine *walkengine.Engine, opts ...tea.ProgramOption) (walkengine.Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bridge := NewEventBridge()
	engine.Emitter = bridge

	program := tea.NewProgram(NewModel(engine.Root, bridge, cancel), opts...)

	type result struct {
		stats walkengine.Stats
		err   error
	}

	done := make(chan result, 1)

	go func() {
		err := engine.Run(ctx)
		bridge.Close()
		program.Send(WalkDoneMsg{Stats: engine.Stats, Err: err})
		done <- result{stats: engine.Stats, err: err}
	}()

	_, uiErr := program.Run()

	// The view may quit first (second ctrl+c, or a terminal error); stop
	// the walk and wait for it either way.
	cancel()

	res := <-done

	if uiErr != nil {
		return res.stats, fmt.Errorf("progress view failed: %w", uiErr)
	}

	return res.stats, res.err
}
