//go:build windows

package input

import (
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	wmPaste         = 0x0302
	smtoAbortIfHung = 0x0002

	// Upper bound on how long a hung control may stall the paste message.
	sendMessageTimeoutMs = 100
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procGetGUIThreadInfo         = user32.NewProc("GetGUIThreadInfo")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procSendMessageTimeoutW      = user32.NewProc("SendMessageTimeoutW")
)

// Control classes known to accept WM_PASTE directly. Anything else falls
// through to the hotkey chord.
var pasteClassAllowlist = map[string]bool{
	"edit":        true,
	"richedit":    true,
	"richedit20a": true,
	"richedit20w": true,
	"richedit50w": true,
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type guiThreadInfo struct {
	CbSize        uint32
	Flags         uint32
	HwndActive    windows.HWND
	HwndFocus     windows.HWND
	HwndCapture   windows.HWND
	HwndMenuOwner windows.HWND
	HwndMoveSize  windows.HWND
	HwndCaret     windows.HWND
	RcCaret       rect
}

// nativeMessagePaste delivers a paste by sending WM_PASTE straight to the
// focused edit control, bypassing synthetic keystrokes. It only claims
// the paste when every resolution step succeeds; any failure reports
// "not handled" so the chain falls back to the hotkey chord.
type nativeMessagePaste struct{}

func newNativeMessagePaste() PasteCapability { return nativeMessagePaste{} }

func (nativeMessagePaste) Name() string { return "native-message" }

func (nativeMessagePaste) Paste() (bool, error) {
	target, ok := focusedEditControl()
	if !ok {
		return false, nil
	}
	// SendMessageTimeoutW returns zero when the message timed out or the
	// target hung; in that case fall back rather than retry.
	ret, _, _ := procSendMessageTimeoutW.Call(
		uintptr(target),
		wmPaste,
		0,
		0,
		smtoAbortIfHung,
		sendMessageTimeoutMs,
		0,
	)
	return ret != 0, nil
}

// focusedEditControl resolves the control holding keyboard focus under
// the foreground window and reports whether its class is eligible for a
// direct paste message.
func focusedEditControl() (windows.HWND, bool) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0, false
	}

	threadID, _, _ := procGetWindowThreadProcessID.Call(hwnd, 0)
	if threadID == 0 {
		return 0, false
	}

	var info guiThreadInfo
	info.CbSize = uint32(unsafe.Sizeof(info))
	ok, _, _ := procGetGUIThreadInfo.Call(threadID, uintptr(unsafe.Pointer(&info)))
	if ok == 0 {
		return 0, false
	}

	target := info.HwndFocus
	if target == 0 {
		target = info.HwndActive
	}
	if target == 0 {
		return 0, false
	}

	var buf [256]uint16
	n, _, _ := procGetClassNameW.Call(
		uintptr(target),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if n == 0 {
		return 0, false
	}

	class := strings.ToLower(windows.UTF16ToString(buf[:n]))
	return target, pasteClassAllowlist[class]
}
