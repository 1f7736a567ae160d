package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/handleui/shimmer"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/util"
)

// Stage messages shown while an analysis is running.
const (
	StageAnalyzing  = "Analyzing your code and error..."
	StageGenerating = "Generating three different solutions..."
)

const shimmerBase = "#585858"

// StageMsg switches the status line to a new stage.
type StageMsg string

// DoneMsg signals completion.
type DoneMsg struct {
	Duration time.Duration
}

// ErrMsg signals an error.
type ErrMsg struct {
	Err error
}

// ProgressModel is a single-line spinner shown during an analysis.
type ProgressModel struct {
	spinner   spinner.Model
	shimmer   shimmer.Model
	stage     string
	startTime time.Time
	done      bool
	duration  time.Duration
	err       error
	cancel    func()
	quitting  bool
}

// NewProgressModel creates the model. cancel is called when the user quits.
func NewProgressModel(cancel func()) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = BrandStyle

	shim := shimmer.New(StageAnalyzing, shimmerBase).SetLoading(true)

	return ProgressModel{
		spinner:   s,
		shimmer:   shim,
		stage:     StageAnalyzing,
		startTime: time.Now(),
		cancel:    cancel,
	}
}

// Init starts the spinner and the shimmer animation.
func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.shimmer.Init())
}

// Update handles messages.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case StageMsg:
		m.stage = string(msg)
		m.shimmer = m.shimmer.SetText(m.stage).SetLoading(true)
		return m, nil

	case DoneMsg:
		m.done = true
		m.duration = msg.Duration
		return m, tea.Quit

	case ErrMsg:
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case shimmer.TickMsg:
		var cmd tea.Cmd
		m.shimmer, cmd = m.shimmer.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the status line.
func (m ProgressModel) View() string {
	switch {
	case m.quitting:
		return ""
	case m.err != nil:
		return fmt.Sprintf("%s %s\n", StatusIcon(false), ErrorStyle.Render(m.err.Error()))
	case m.done:
		return fmt.Sprintf("%s %s\n", StatusIcon(true),
			MutedStyle.Render("Analysis complete in "+util.FormatDuration(m.duration)))
	}
	elapsed := util.FormatElapsed(time.Since(m.startTime))
	return m.spinner.View() + " " + m.shimmer.View() + MutedStyle.Render(" · "+elapsed) + "\n"
}

// Stage returns the current stage text.
func (m ProgressModel) Stage() string {
	return m.stage
}

// WasCancelled returns true if the user quit.
func (m ProgressModel) WasCancelled() bool {
	return m.quitting
}

// Reporter receives stage changes from a running task.
type Reporter func(stage string)

// ErrCancelled is returned by RunWithProgress when the user quits the display.
var ErrCancelled = errors.New("cancelled")

// RunWithProgress runs task while rendering a ProgressModel on out. When
// interactive is false the task runs without any display.
func RunWithProgress(ctx context.Context, out io.Writer, interactive bool, task func(ctx context.Context, report Reporter) error) error {
	if !interactive {
		return task(ctx, func(string) {})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	model := NewProgressModel(cancel)
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithInput(nil),
	)

	result := make(chan error, 1)
	go func() {
		err := task(ctx, func(stage string) { program.Send(StageMsg(stage)) })
		if err != nil {
			program.Send(ErrMsg{Err: err})
		} else {
			program.Send(DoneMsg{Duration: time.Since(start)})
		}
		result <- err
	}()

	final, runErr := program.Run()
	taskErr := <-result
	if pm, ok := final.(ProgressModel); ok && pm.WasCancelled() {
		return ErrCancelled
	}
	if taskErr != nil {
		return taskErr
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("progress display: %w", runErr)
	}
	return nil
}
