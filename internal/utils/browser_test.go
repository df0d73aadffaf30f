package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserOpener_Open(t *testing.T) {
	var opened []string
	saved := openURL
	t.Cleanup(func() { openURL = saved })

	openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	assert.NoError(t, BrowserOpener{}.Open("http://localhost:8000/view_pdf?x=1"))
	assert.Equal(t, []string{"http://localhost:8000/view_pdf?x=1"}, opened)

	openURL = func(string) error { return errors.New("no handler") }
	err := BrowserOpener{}.Open("http://localhost:8000/")
	assert.ErrorContains(t, err, "failed to open http://localhost:8000/")
	assert.ErrorContains(t, err, "no handler")
}
