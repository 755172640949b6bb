package tui

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

const clipboardTimeout = 5 * time.Second

// copyText writes text to the clipboard. An explicit command receives the
// text on stdin; otherwise the platform clipboard tool is used.
func copyText(text, command string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		if clipboard.Unsupported {
			return errors.New("no clipboard tool available (install wl-clipboard, xclip or xsel)")
		}
		return clipboard.WriteAll(text)
	}

	ctx, cancel := context.WithTimeout(context.Background(), clipboardTimeout)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)
	return c.Run()
}
