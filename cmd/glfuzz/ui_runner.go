package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"glfuzz/internal/driver"
	"glfuzz/internal/ui"
)

type generateOutcome struct {
	variants []driver.Variant
	err      error
}

func runGenerateWithUI(ctx context.Context, title, base string, opts driver.Options) ([]driver.Variant, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Generate шлёт queued для всех вариантов сразу, затем по два события на вариант
	events := make(chan driver.VariantEvent, 3*opts.Count+1)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		o := opts
		o.Observer = func(ev driver.VariantEvent) { events <- ev }
		vs, err := driver.Generate(ctx, o)
		outcomeCh <- generateOutcome{variants: vs, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, base, opts.Count, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// ctrl+c закрывает UI раньше времени: останавливаем генерацию
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.variants, uiErr
	}
	return outcome.variants, outcome.err
}
