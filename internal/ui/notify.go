package ui

import (
	"os/exec"
	"runtime"
	"strings"
)

// Notify sends a desktop notification through osascript on macOS or
// notify-send elsewhere. Fails silently if neither is available.
func Notify(title, message string) {
	switch runtime.GOOS {
	case "darwin":
		script := `display notification "` + escapeAppleScript(message) + `" with title "` + escapeAppleScript(title) + `"`
		_ = exec.Command("osascript", "-e", script).Run()
	case "linux", "freebsd", "openbsd":
		if path, err := exec.LookPath("notify-send"); err == nil {
			_ = exec.Command(path, title, message).Run()
		}
	}
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeAppleScript(s string) string {
	return appleScriptEscaper.Replace(s)
}
