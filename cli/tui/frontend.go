package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/dualcli"
)

// Frontend runs the application as an interactive terminal UI
type Frontend struct {
	options []tea.ProgramOption
}

var _ dualcli.Frontend = (*Frontend)(nil)

// New creates a front-end. The alternate screen is used unless options override it.
func New(options ...tea.ProgramOption) *Frontend {
	return &Frontend{
		options: options,
	}
}

func (f *Frontend) Run(ctx context.Context, session *dualcli.Session) error {
	model, release := f.attach(ctx, session)
	defer release()

	options := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, f.options...)
	program := tea.NewProgram(model, options...)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// attach creates the model and keeps log lines off the terminal until release is
// called. Logging to a file is unaffected.
func (f *Frontend) attach(ctx context.Context, session *dualcli.Session) (*Model, func()) {
	restore := session.App.Logger().SuspendTerminal()
	InitDebugLog(session.App.Logger())

	model := NewModel(ctx, session)
	return model, func() {
		model.Close()
		CloseDebugLog()
		restore()
	}
}
