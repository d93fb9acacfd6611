package browse

import (
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultEditor = "vi"

// editorClosedMsg is sent when the external editor exits.
type editorClosedMsg struct {
	path string
	err  error
}

// editorCommand returns the command opening path in the user's editor.
func editorCommand(path string) *exec.Cmd {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	return exec.Command(editor, path)
}

// openEditor suspends the program while the user's editor runs on path.
func openEditor(path string) tea.Cmd {
	return tea.ExecProcess(editorCommand(path), func(err error) tea.Msg {
		return editorClosedMsg{path: path, err: err}
	})
}
