//go:build !windows

package capture

import "image"

// WindowRect is unsupported off Windows; the full screen is captured instead.
func WindowRect(title string) RectProvider {
	return func() (image.Rectangle, bool) { return image.Rectangle{}, false }
}

// WindowTitles is unsupported off Windows.
func WindowTitles() ([]string, error) { return nil, nil }
