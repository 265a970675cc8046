package display

import (
	"github.com/teslashibe/go-gauge/pkg/gauge"
	"gocv.io/x/gocv"
)

// Keys that end a session from the preview window.
const (
	KeyQuit   = 'q'
	KeyEscape = 27
)

// WindowSink shows frames in a native OpenCV window.
type WindowSink struct {
	window *gocv.Window
	closed bool
}

// NewWindowSink opens a window titled name.
func NewWindowSink(name string) *WindowSink {
	return &WindowSink{window: gocv.NewWindow(name)}
}

// Show draws the frame.
func (w *WindowSink) Show(frame gocv.Mat, _ gauge.Result) error {
	if w.closed || frame.Empty() {
		return nil
	}
	w.window.IMShow(frame)
	return nil
}

// Poll pumps window events and reports 'q' or Esc.
func (w *WindowSink) Poll() bool {
	if w.closed {
		return false
	}
	key := w.window.WaitKey(1)
	return key == KeyQuit || key == KeyEscape
}

// Close destroys the window.
func (w *WindowSink) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.window.Close()
}
