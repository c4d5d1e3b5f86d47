package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/TruthWeaver/internal/session"
	"github.com/yildizm/TruthWeaver/internal/submission"
)

// stateChangedMsg tells the model the session store moved; the model reads
// a fresh snapshot rather than trusting the message.
type stateChangedMsg struct{}

type fileLoadedMsg struct {
	path string
	file *session.AudioFile
	err  error
}

type submissionDoneMsg struct {
	outcome submission.Outcome
}

// loadFileCmd reads an audio file off the event loop
func loadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		file, err := session.LoadAudioFile(path)
		return fileLoadedMsg{path: path, file: file, err: err}
	}
}

// submitCmd runs one submission in a command goroutine
func submitCmd(ctx context.Context, controller *submission.Controller) tea.Cmd {
	return func() tea.Msg {
		return submissionDoneMsg{outcome: controller.SubmitSelected(ctx)}
	}
}
