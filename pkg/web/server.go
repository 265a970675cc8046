// Package web serves a live dashboard for a reading session: status and
// scale over a JSON API, and frames over MJPEG and websockets.
package web

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-gauge/pkg/camera"
	"github.com/teslashibe/go-gauge/pkg/gauge"
	"github.com/teslashibe/go-gauge/pkg/hub"
	"github.com/teslashibe/go-gauge/pkg/session"
	"gocv.io/x/gocv"
)

//go:embed index.html
var indexHTML []byte

// hashSize is the side of the thumbnail hashed for deduplication.
const hashSize = 64

// shutdownTimeout bounds how long open connections may delay Start's return.
const shutdownTimeout = 5 * time.Second

// FrameCounters counts what happened to the frames the server was shown.
type FrameCounters struct {
	Shown     int64 `json:"shown"`
	Published int64 `json:"published"`
	Skipped   int64 `json:"skipped"`
}

// SessionInfo identifies the session feeding the dashboard.
type SessionInfo struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Running   bool      `json:"running"`
	Frames    int       `json:"frames"`
	Readings  int       `json:"readings"`
}

// Snapshot is the dashboard's view of the latest frame.
type Snapshot struct {
	Session   *SessionInfo       `json:"session,omitempty"`
	Camera    *camera.Metadata   `json:"camera,omitempty"`
	State     gauge.State        `json:"state"`
	Live      *gauge.Reading     `json:"live,omitempty"`
	Displayed *gauge.Reading     `json:"displayed,omitempty"`
	Angle     *float64           `json:"angle,omitempty"`
	Stats     gauge.StatsSummary `json:"stats"`
	Frames    FrameCounters      `json:"frames"`
	Clients   int                `json:"clients"`
	UpdatedAt time.Time          `json:"updated_at"`
	Closed    bool               `json:"closed"`
}

// Server is the dashboard. It implements display.Sink: the session shows
// it every frame and it republishes them to browsers.
type Server struct {
	app    *fiber.App
	config Config
	scale  *gauge.Scale
	logger *slog.Logger

	frameHub  *hub.Hub
	statusHub *hub.Hub

	mu        sync.RWMutex
	snapshot  Snapshot
	jpeg      []byte
	lastHash  *goimagehash.ImageHash
	lastLabel string
	status    func() session.Status
	streams   map[chan []byte]struct{}

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewServer creates a dashboard for a reader using scale.
func NewServer(cfg Config, scale *gauge.Scale, logger *slog.Logger) (*Server, error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("web: invalid configuration: %s", strings.Join(problems, "; "))
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    cfg,
		scale:     scale,
		logger:    logger,
		frameHub:  hub.New("frames", logger),
		statusHub: hub.New("status", logger),
		streams:   make(map[chan []byte]struct{}),
		stopped:   make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gauge Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)
	app.Get("/stream.mjpg", s.handleStream)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/scale", s.handleScale)
	api.Get("/frame.jpg", s.handleFrame)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s, nil
}

// SetSession attaches the session whose progress /api/status reports.
func (s *Server) SetSession(status func() session.Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// SetCamera records the stream geometry the capture device negotiated.
func (s *Server) SetCamera(meta camera.Metadata) {
	s.mu.Lock()
	s.snapshot.Camera = &meta
	s.mu.Unlock()
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.frameHub.Run(ctx)
	go s.statusHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.config.Addr)
	}()
	s.logger.Info("dashboard listening", "addr", s.config.Addr)

	select {
	case err := <-errCh:
		s.stop()
		return fmt.Errorf("web: listen %s: %w", s.config.Addr, err)
	case <-ctx.Done():
	}

	s.stop()
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	select {
	case err := <-errCh:
		return err
	case <-time.After(shutdownTimeout):
		return nil
	}
}

func (s *Server) stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

// Show records res and publishes the frame unless it looks like the last
// one published and the reading is unchanged. Status clients get a status
// event every frame and a locked event when the reading first latches.
func (s *Server) Show(frame gocv.Mat, res gauge.Result) error {
	if frame.Empty() {
		return nil
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{int(gocv.IMWriteJpegQuality), s.config.JPEGQuality})
	if err != nil {
		return fmt.Errorf("web: encode frame: %w", err)
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	label := ""
	if res.Displayed != nil {
		label = res.Displayed.Label
	}
	skip := s.similar(frame) && label == s.lastLabelValue()

	s.mu.Lock()
	locked := s.snapshot.State != gauge.Locked && res.State == gauge.Locked
	s.jpeg = data
	s.lastLabel = label
	s.snapshot.Frames.Shown++
	if skip {
		s.snapshot.Frames.Skipped++
	} else {
		s.snapshot.Frames.Published++
	}
	s.applyResult(res)
	s.mu.Unlock()

	if !skip {
		s.frameHub.BroadcastBinary(data)
		s.publishStream(data)
	}
	if locked && res.Displayed != nil {
		if err := s.statusHub.BroadcastEvent(hub.EventLocked, res.Displayed); err != nil {
			return fmt.Errorf("web: publish lock: %w", err)
		}
	}
	return s.statusHub.BroadcastEvent(hub.EventStatus, s.Snapshot())
}

// Poll never requests a quit; the dashboard is read-only.
func (s *Server) Poll() bool {
	return false
}

// Close marks the session as ended. The server keeps serving the last
// state until Start's context is done.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.snapshot.Closed {
		s.mu.Unlock()
		return nil
	}
	s.snapshot.Closed = true
	s.mu.Unlock()
	return s.statusHub.BroadcastEvent(hub.EventEnded, s.Snapshot())
}

// Snapshot returns a copy of the dashboard state.
func (s *Server) Snapshot() Snapshot {
	s.mu.RLock()
	snap := s.snapshot
	status := s.status
	s.mu.RUnlock()

	if status != nil {
		st := status()
		snap.Session = &SessionInfo{
			ID:        st.ID,
			StartedAt: st.StartedAt,
			Running:   st.Running,
			Frames:    st.Frames,
			Readings:  st.Readings,
		}
	}
	snap.Clients = s.frameHub.ClientCount() + s.statusHub.ClientCount()
	return snap
}

// applyResult copies res into the snapshot. Callers hold s.mu.
func (s *Server) applyResult(res gauge.Result) {
	snap := &s.snapshot
	snap.State = res.State
	snap.Stats = res.Stats
	snap.UpdatedAt = time.Now()
	snap.Live, snap.Displayed, snap.Angle = nil, nil, nil
	if !res.OK() {
		return
	}
	live, displayed, angle := *res.Live, *res.Displayed, res.Angle.Degrees()
	snap.Live, snap.Displayed, snap.Angle = &live, &displayed, &angle
}

func (s *Server) lastLabelValue() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastLabel
}

// similar hashes a thumbnail of frame and reports whether it is within
// MaxHashDistance of the last published frame.
func (s *Server) similar(frame gocv.Mat) bool {
	if s.config.MaxHashDistance < 0 {
		return false
	}

	thumb := gocv.NewMat()
	defer thumb.Close()
	gocv.Resize(frame, &thumb, image.Pt(hashSize, hashSize), 0, 0, gocv.InterpolationArea)

	img, err := thumb.ToImage()
	if err != nil {
		return false
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastHash == nil {
		s.lastHash = hash
		return false
	}
	dist, err := s.lastHash.Distance(hash)
	if err != nil || dist > s.config.MaxHashDistance {
		s.lastHash = hash
		return false
	}
	s.logger.Debug("skipping similar frame", "distance", dist)
	return true
}
