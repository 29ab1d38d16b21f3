package term

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
)

// RestoreOnPanic puts the terminal back before reporting a panic to w and
// calling exit. It must be deferred directly, once per goroutine that can
// draw to screen.
func RestoreOnPanic(screen tcell.Screen, w io.Writer, exit func(int)) {
	r := recover()
	if r == nil {
		return
	}
	screen.Fini()
	fmt.Fprintf(w, "PALMBREAK CRASHED: %v\nStack Trace:\n%s\n", r, debug.Stack())
	exit(1)
}
