package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"escheck/internal/diag"
	"escheck/internal/driver"
	"escheck/internal/ui"
)

type checkOutcome struct {
	report diag.Report
	err    error
}

func runCheckWithUI(ctx context.Context, title string, cfg driver.Config, opts driver.Options) (diag.Report, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Sink = driver.ChannelSink{Ch: events}
		report, err := driver.Run(ctx, cfg, opts)
		outcomeCh <- checkOutcome{report: report, err: err}
		close(events)
	}()

	files := driver.Filter(cfg.Files, cfg.Skip)
	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		// события больше никто не читает
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
