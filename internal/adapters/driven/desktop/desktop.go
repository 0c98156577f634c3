// Package desktop copies text to the clipboard and opens links using the
// tools the operating system ships with.
package desktop

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure Launcher implements the interface.
var _ driven.Desktop = (*Launcher)(nil)

// Launcher implements driven.Desktop by shelling out to OS utilities.
type Launcher struct {
	goos     string
	lookPath func(file string) (string, error)
	run      func(cmd *exec.Cmd) error // waits for the command
	start    func(cmd *exec.Cmd) error // does not wait
}

// NewLauncher creates a Launcher for the running platform.
func NewLauncher() *Launcher {
	return &Launcher{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      (*exec.Cmd).Run,
		start:    (*exec.Cmd).Start,
	}
}

// CopyText pipes text into the platform clipboard tool.
func (l *Launcher) CopyText(text string) error {
	cmd, err := l.clipboardCommand()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return l.run(cmd)
}

// OpenURL hands url to the system default handler.
func (l *Launcher) OpenURL(url string) error {
	cmd, err := l.openCommand(url)
	if err != nil {
		return err
	}
	return l.start(cmd)
}

func (l *Launcher) clipboardCommand() (*exec.Cmd, error) {
	switch l.goos {
	case osDarwin:
		return exec.Command("pbcopy"), nil
	case osLinux:
		// Wayland first, then X11 tools
		if _, err := l.lookPath("wl-copy"); err == nil {
			return exec.Command("wl-copy"), nil
		}
		if _, err := l.lookPath("xclip"); err == nil {
			return exec.Command("xclip", "-selection", "clipboard"), nil
		}
		if _, err := l.lookPath("xsel"); err == nil {
			return exec.Command("xsel", "--clipboard", "--input"), nil
		}
		return nil, fmt.Errorf("no clipboard utility found (install wl-clipboard, xclip or xsel)")
	case osWindows:
		return exec.Command("cmd", "/c", "clip"), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", l.goos)
	}
}

func (l *Launcher) openCommand(url string) (*exec.Cmd, error) {
	switch l.goos {
	case osDarwin:
		return exec.Command("open", url), nil
	case osLinux:
		return exec.Command("xdg-open", url), nil
	case osWindows:
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", l.goos)
	}
}
