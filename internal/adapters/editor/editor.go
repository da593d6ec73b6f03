package editor

import (
	"errors"
	"os"
	"os/exec"
	"strings"
)

// ErrNoEditor is returned when neither $VISUAL, $EDITOR nor a known editor is available
var ErrNoEditor = errors.New("no editor found: set $EDITOR")

// fallbacks are tried in order when no editor is configured
var fallbacks = []string{"nvim", "vim", "vi", "nano"}

// Editor opens files in the user's editor
type Editor struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
}

// New creates an editor resolving from the process environment
func New() *Editor {
	return &Editor{getenv: os.Getenv, lookPath: exec.LookPath}
}

// Command returns the command that edits path. $VISUAL and $EDITOR may
// carry arguments, e.g. "code --wait".
func (e *Editor) Command(path string) (*exec.Cmd, error) {
	argv := e.resolve()
	if len(argv) == 0 {
		return nil, ErrNoEditor
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// Edit opens path and waits for the editor to exit
func (e *Editor) Edit(path string) error {
	cmd, err := e.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (e *Editor) resolve() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(e.getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	for _, name := range fallbacks {
		if path, err := e.lookPath(name); err == nil {
			return []string{path}
		}
	}
	return nil
}
