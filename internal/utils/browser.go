package utils

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
)

// openURL is replaced in tests
var openURL = browser.OpenURL

func init() {
	// xdg-open and friends chatter on stdout, which would tear the TUI
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// BrowserOpener opens URLs with the platform's default handler
type BrowserOpener struct{}

// Open launches the system URL handler for target
func (BrowserOpener) Open(target string) error {
	if err := openURL(target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}
