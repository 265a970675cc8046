package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-gauge/pkg/camera"
	"github.com/teslashibe/go-gauge/pkg/display"
	"github.com/teslashibe/go-gauge/pkg/gauge"
	"gocv.io/x/gocv"
)

// Status is a copy of a session's progress, safe to share.
type Status struct {
	ID        string       `json:"id"`
	StartedAt time.Time    `json:"started_at"`
	Running   bool         `json:"running"`
	Frames    int          `json:"frames"`
	Readings  int          `json:"readings"`
	Last      gauge.Result `json:"last"`
}

// Session owns a source, a reader and a sink for the duration of one run.
// Run must be called at most once.
type Session struct {
	id     string
	src    camera.Source
	reader *gauge.Reader
	sink   display.Sink
	config Config
	logger *slog.Logger

	stop      atomic.Bool
	started   atomic.Bool
	closeOnce sync.Once

	mu     sync.RWMutex
	status Status
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New creates a session over an opened source. The session takes
// ownership of src and sink; both are released when Run returns, or by
// Close if Run is never called.
func New(src camera.Source, reader *gauge.Reader, sink display.Sink, cfg Config, opts ...Option) (*Session, error) {
	if src == nil || !src.IsOpened() {
		return nil, &AcquisitionError{Frame: 0, Err: camera.ErrOpen}
	}
	if reader == nil {
		return nil, errors.New("session: reader is required")
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("session: invalid configuration: %s", strings.Join(problems, "; "))
	}
	if sink == nil {
		sink = display.Discard
	}

	s := &Session{
		id:     uuid.New().String(),
		src:    src,
		reader: reader,
		sink:   sink,
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	s.status.ID = s.id
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Status returns a snapshot of the session's progress.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Stop asks Run to return after the current cycle.
func (s *Session) Stop() {
	s.stop.Store(true)
}

// Run reads frames until the source fails, the sink asks to quit, Stop is
// called, ctx is done or MaxFrames is reached. Only a source failure is
// reported as an error, as an *AcquisitionError.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrClosed
	}
	defer s.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	s.mu.Lock()
	s.status.StartedAt = time.Now()
	s.status.Running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.status.Running = false
		s.mu.Unlock()
	}()

	s.logger.Info("session started",
		"target", s.reader.Stabilizer().Target(),
		"frame_delay", s.config.FrameDelay)

	var size image.Point
	for n := 0; ; n++ {
		if err := s.src.Read(&frame); err != nil {
			s.logger.Error("frame acquisition failed", "frame", n, "error", err)
			return &AcquisitionError{Frame: n, Err: err}
		}
		if n == 0 {
			size = image.Pt(frame.Cols(), frame.Rows())
		} else if got := image.Pt(frame.Cols(), frame.Rows()); got != size {
			s.logger.Error("frame geometry changed", "frame", n, "want", size, "got", got)
			return &AcquisitionError{Frame: n, Err: ErrGeometryChanged}
		}

		res := s.reader.Process(&frame)
		s.record(res)

		if err := s.sink.Show(frame, res); err != nil {
			s.logger.Warn("sink failed", "frame", n, "error", err)
		}

		if s.sink.Poll() {
			s.logger.Info("quit requested", "frames", n+1)
			return nil
		}
		if s.stop.Load() || ctx.Err() != nil {
			s.logger.Info("session stopped", "frames", n+1)
			return nil
		}
		if s.config.MaxFrames > 0 && n+1 >= s.config.MaxFrames {
			s.logger.Info("frame limit reached", "frames", n+1)
			return nil
		}
		if !s.wait(ctx) {
			s.logger.Info("session stopped", "frames", n+1)
			return nil
		}
	}
}

// Close releases the source and the sink. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.started.Store(true)
		err = errors.Join(s.src.Close(), s.sink.Close())
		s.logger.Debug("session resources released")
	})
	return err
}

func (s *Session) record(res gauge.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Frames++
	if res.OK() {
		s.status.Readings++
	}
	s.status.Last = res
}

// wait sleeps for the frame delay and reports false when ctx ends first.
func (s *Session) wait(ctx context.Context) bool {
	if s.config.FrameDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.config.FrameDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return !s.stop.Load()
	}
}
