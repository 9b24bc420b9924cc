//go:build windows

package capture

import (
	"image"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modUser32           = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW     = modUser32.NewProc("FindWindowW")
	procGetClientRect   = modUser32.NewProc("GetClientRect")
	procClientToScreen  = modUser32.NewProc("ClientToScreen")
	procIsIconic        = modUser32.NewProc("IsIconic")
	procEnumWindows     = modUser32.NewProc("EnumWindows")
	procGetWindowTextW  = modUser32.NewProc("GetWindowTextW")
	procIsWindowVisible = modUser32.NewProc("IsWindowVisible")
)

type winRect struct{ Left, Top, Right, Bottom int32 }

type winPoint struct{ X, Y int32 }

// WindowRect returns a provider that resolves the client area of the top-level
// window titled title on every call. Minimized or missing windows report !ok.
func WindowRect(title string) RectProvider {
	return func() (image.Rectangle, bool) {
		if title == "" {
			return image.Rectangle{}, false
		}
		name, err := windows.UTF16PtrFromString(title)
		if err != nil {
			return image.Rectangle{}, false
		}
		hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(name)))
		if hwnd == 0 {
			return image.Rectangle{}, false
		}
		if iconic, _, _ := procIsIconic.Call(hwnd); iconic != 0 {
			return image.Rectangle{}, false
		}
		var rc winRect
		if r1, _, _ := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&rc))); r1 == 0 {
			return image.Rectangle{}, false
		}
		var origin winPoint
		if r1, _, _ := procClientToScreen.Call(hwnd, uintptr(unsafe.Pointer(&origin))); r1 == 0 {
			return image.Rectangle{}, false
		}
		r := image.Rect(int(origin.X), int(origin.Y), int(origin.X+rc.Right-rc.Left), int(origin.Y+rc.Bottom-rc.Top))
		return r, !r.Empty()
	}
}

// WindowTitles lists the titles of visible top-level windows, skipping
// untitled ones.
func WindowTitles() ([]string, error) {
	var titles []string
	cb := windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		if vis, _, _ := procIsWindowVisible.Call(hwnd); vis == 0 {
			return 1
		}
		buf := make([]uint16, 256)
		n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if n == 0 {
			return 1
		}
		if title := strings.TrimSpace(windows.UTF16ToString(buf[:n])); title != "" {
			titles = append(titles, title)
		}
		return 1
	})
	if r, _, err := procEnumWindows.Call(cb, 0); r == 0 {
		return nil, err
	}
	return titles, nil
}
