package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/TruthWeaver/internal/emoji"
	"github.com/yildizm/TruthWeaver/internal/logger"
	"github.com/yildizm/TruthWeaver/internal/render"
	"github.com/yildizm/TruthWeaver/internal/session"
	"github.com/yildizm/TruthWeaver/internal/submission"
)

const helpLine = "enter select file • ctrl+t transcribe & analyze • ctrl+l clear • esc quit"

// Watcher follows the selected file on disk
type Watcher interface {
	Watch(path string) error
}

// Options configures the interactive app
type Options struct {
	Theme       string
	Color       bool
	InitialPath string
	Watcher     Watcher
	Logger      *logger.Logger
}

// Model is the bubbletea model for one session
type Model struct {
	ctx        context.Context
	controller *submission.Controller
	store      *session.Store
	watcher    Watcher
	log        *logger.Logger

	input   textinput.Model
	spinner spinner.Model
	styles  *Styles

	initialPath string
	view        render.View
	notice      string
	width       int
	quitting    bool
}

// NewModel creates the model. An unknown theme falls back to the default.
func NewModel(ctx context.Context, controller *submission.Controller, opts Options) *Model {
	theme, ok := ThemeByName(opts.Theme)
	if !ok {
		theme = DefaultTheme
	}
	styles := NewStyles(theme, opts.Color)

	input := textinput.New()
	input.Placeholder = "path/to/recording.wav"
	input.Prompt = emoji.GetEmoji("audio") + " "
	input.CharLimit = 4096
	input.Width = 60
	input.SetValue(opts.InitialPath)
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner))

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	m := &Model{
		ctx:         ctx,
		controller:  controller,
		store:       controller.Store(),
		watcher:     opts.Watcher,
		log:         log,
		input:       input,
		spinner:     spin,
		styles:      styles,
		initialPath: strings.TrimSpace(opts.InitialPath),
	}
	m.refresh()
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.initialPath != "" {
		cmds = append(cmds, loadFileCmd(m.initialPath))
	}
	return tea.Batch(cmds...)
}

// Update handles messages. The view is re-derived from a fresh snapshot on
// every call.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.handle(msg)
	m.refresh()
	return m, cmd
}

func (m *Model) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-10)
		return nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case stateChangedMsg:
		return nil
	case fileLoadedMsg:
		return m.handleFileLoaded(msg)
	case submissionDoneMsg:
		return m.handleSubmissionDone(msg)
	case spinner.TickMsg:
		// stop ticking once nothing is in flight
		if m.store.Snapshot().Status != session.StatusInFlight {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit
	case "enter":
		return m.handleSelect()
	case "ctrl+t":
		return m.handleSubmit()
	case "ctrl+l":
		m.input.Reset()
		m.notice = ""
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleSelect() tea.Cmd {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		m.notice = "Type the path of an audio file, then press enter."
		return nil
	}
	m.notice = ""
	return loadFileCmd(path)
}

// handleSubmit starts a submission when the view allows one
func (m *Model) handleSubmit() tea.Cmd {
	if !m.view.CanSubmit {
		return nil
	}
	m.notice = ""
	return tea.Batch(submitCmd(m.ctx, m.controller), m.spinner.Tick)
}

func (m *Model) handleFileLoaded(msg fileLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.notice = fmt.Sprintf("Could not open %s: %v", msg.path, msg.err)
		m.log.Warn("failed to load %s: %v", msg.path, msg.err)
		return nil
	}

	m.store.SelectFile(msg.file)
	m.log.InfoWithFields("file selected", []logger.Field{
		logger.F("file", msg.file.Name),
		logger.F("bytes", msg.file.Size()),
	})

	if m.watcher != nil {
		if err := m.watcher.Watch(msg.path); err != nil {
			m.log.Warn("cannot watch %s: %v", msg.path, err)
		}
	}
	return nil
}

func (m *Model) handleSubmissionDone(msg submissionDoneMsg) tea.Cmd {
	outcome := msg.outcome
	if outcome.Failure != nil && errors.Is(outcome.Failure.Err, session.ErrInvalidTransition) {
		m.notice = outcome.Failure.Message
	}
	return nil
}

func (m *Model) refresh() {
	m.view = render.Build(m.store.Snapshot())
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return m.styles.Muted.Render(emoji.GetEmoji("door")+" Goodbye!") + "\n"
	}

	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Truth Weaver"))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render("Upload an audio file to transcribe and analyze"))
	b.WriteString("\n\n")

	b.WriteString(s.Box.Render(m.renderControls()))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(s.Warning.Render(emoji.GetEmoji("warning") + " " + m.notice))
		b.WriteString("\n")
	}

	if m.view.Error != nil {
		b.WriteString(m.renderError(m.view.Error))
	}

	if m.view.HasResults() {
		b.WriteString(m.renderResults())
	}

	b.WriteString("\n")
	b.WriteString(s.Muted.Render(helpLine))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) renderControls() string {
	s := m.styles
	lines := []string{m.input.View()}

	if m.view.FileName != "" {
		lines = append(lines, s.Info.Render("Selected: "+m.view.FileSummary()))
	} else {
		lines = append(lines, s.Muted.Render("No file selected"))
	}

	var button string
	switch {
	case m.view.Busy:
		button = m.spinner.View() + " " + s.ButtonDisabled.Render(m.view.SubmitLabel)
	case m.view.CanSubmit:
		button = s.Button.Render(m.view.SubmitLabel)
	default:
		button = s.ButtonDisabled.Render(m.view.SubmitLabel)
	}
	lines = append(lines, "", button)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderError(block *render.ErrorBlock) string {
	s := m.styles
	return s.Error.Render(emoji.GetEmoji("error")+" "+block.Message) + "\n" +
		s.Muted.Render(emoji.GetEmoji("hint")+" "+block.Hint) + "\n"
}

func (m *Model) renderResults() string {
	s := m.styles
	var b strings.Builder

	if m.view.Transcript != "" {
		b.WriteString(s.Header.Render(emoji.GetEmoji("transcript") + " Transcript"))
		b.WriteString("\n")
		b.WriteString(s.Panel.Render(m.wrap(m.view.Transcript)))
		b.WriteString("\n")
	}

	av := m.view.Analysis
	if av == nil {
		return b.String()
	}

	b.WriteString(s.Header.Render(emoji.GetEmoji("truth") + " Revealed Truth"))
	b.WriteString("\n")
	if av.ShadowID != "" {
		b.WriteString(s.Muted.Render(emoji.GetEmoji("shadow") + " " + av.ShadowID))
		b.WriteString("\n")
	}
	for _, row := range av.Truth {
		b.WriteString(s.TruthLabel.Render(row.Label+":") + " " + s.Body.Render(row.Value))
		b.WriteString("\n")
	}

	b.WriteString(s.Header.Render(emoji.GetEmoji("pattern") + " Deception Patterns"))
	b.WriteString("\n")
	if len(av.Patterns) == 0 {
		b.WriteString(s.Muted.Render("None detected"))
		b.WriteString("\n")
	}
	for _, p := range av.Patterns {
		b.WriteString(s.PatternLabel.Render(p.Heading()))
		b.WriteString("\n")
		for _, claim := range p.Claims {
			b.WriteString(s.Claim.Render("• " + claim))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m *Model) wrap(text string) string {
	if m.width <= 10 {
		return text
	}
	return lipgloss.NewStyle().Width(m.width - 6).Render(text)
}

// Run starts the interactive app and blocks until the user quits
func Run(ctx context.Context, controller *submission.Controller, opts Options) error {
	model := NewModel(ctx, controller, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	unsubscribe := controller.Store().Subscribe(func(session.Snapshot) {
		// Send blocks until the event loop reads, and observers may fire
		// from inside Update
		go p.Send(stateChangedMsg{})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
