package display

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-gauge/pkg/gauge"
	"gocv.io/x/gocv"
)

// ErrRecorder is returned when the output video cannot be written.
var ErrRecorder = errors.New("display: recorder failed")

// RecorderConfig configures a RecorderSink.
type RecorderConfig struct {
	Path  string  `yaml:"path" json:"path"`
	Codec string  `yaml:"codec" json:"codec"`
	FPS   float64 `yaml:"fps" json:"fps"`
}

// DefaultRecorderConfig returns an mp4v recorder at 20 fps.
func DefaultRecorderConfig(path string) RecorderConfig {
	return RecorderConfig{
		Path:  path,
		Codec: "mp4v",
		FPS:   20,
	}
}

// RecorderSink writes every frame to a video file. The file is opened on
// the first frame so it takes the capture's geometry.
type RecorderSink struct {
	config RecorderConfig
	logger *slog.Logger
	writer *gocv.VideoWriter
	frames int
	closed bool
}

// NewRecorderSink creates a recorder for cfg.
func NewRecorderSink(cfg RecorderConfig, logger *slog.Logger) *RecorderSink {
	if cfg.Codec == "" {
		cfg.Codec = "mp4v"
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecorderSink{config: cfg, logger: logger}
}

// Show appends the frame to the video.
func (r *RecorderSink) Show(frame gocv.Mat, _ gauge.Result) error {
	if r.closed {
		return fmt.Errorf("%w: closed", ErrRecorder)
	}
	if frame.Empty() {
		return nil
	}
	if r.writer == nil {
		w, err := gocv.VideoWriterFile(r.config.Path, r.config.Codec, r.config.FPS, frame.Cols(), frame.Rows(), true)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrRecorder, r.config.Path, err)
		}
		if !w.IsOpened() {
			w.Close()
			return fmt.Errorf("%w: cannot open %s", ErrRecorder, r.config.Path)
		}
		r.writer = w
		r.logger.Info("recording started",
			"path", r.config.Path,
			"codec", r.config.Codec,
			"width", frame.Cols(),
			"height", frame.Rows())
	}
	if err := r.writer.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", ErrRecorder, err)
	}
	r.frames++
	return nil
}

// Poll never requests a quit.
func (r *RecorderSink) Poll() bool { return false }

// Frames returns how many frames were written.
func (r *RecorderSink) Frames() int { return r.frames }

// Close finalizes the video file.
func (r *RecorderSink) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.writer == nil {
		return nil
	}
	r.logger.Info("recording finished", "path", r.config.Path, "frames", r.frames)
	return r.writer.Close()
}
