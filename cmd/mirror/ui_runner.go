package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mirror/internal/driver"
	"mirror/internal/ui"
)

type checkOutcome struct {
	result *driver.CheckResult
	err    error
}

// runCheckWithUI runs CheckAll while a Bubble Tea program renders its
// progress events.
func runCheckWithUI(ctx context.Context, title string, opts driver.CheckOptions) (*driver.CheckResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckAll(ctx, opts)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, opts.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// UI мог выйти раньше (ctrl+c или ошибка): дочитываем события, чтобы воркеры не заблокировались
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
