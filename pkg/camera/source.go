package camera

import (
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// Source produces BGR frames with a fixed geometry for one session.
type Source interface {
	// Read blocks until the next frame is written into dst.
	// It returns an error when the device reports a failure.
	Read(dst *gocv.Mat) error

	// IsOpened reports whether the source can still produce frames.
	IsOpened() bool

	// Close releases the device. It is safe to call Close multiple times.
	Close() error
}

// Metadata describes the stream a device actually negotiated.
type Metadata struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FPS    float64 `json:"fps"`
}

// Device is a Source backed by an OpenCV VideoCapture.
type Device struct {
	config Config
	logger *slog.Logger

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	meta   Metadata
	closed bool
}

// OpenDevice opens the camera or video named by cfg.Device and applies the
// requested format. The device is exclusively owned by the returned value.
func OpenDevice(cfg Config, logger *slog.Logger) (*Device, error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}
	if logger == nil {
		logger = slog.Default()
	}

	var target interface{} = cfg.Device
	if id, ok := cfg.DeviceIndex(); ok {
		target = id
	}

	vc, err := gocv.OpenVideoCapture(target)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrOpen, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w %q", ErrOpen, cfg.Device)
	}

	if cfg.FourCC != "" {
		vc.Set(gocv.VideoCaptureFOURCC, float64(vc.ToCodec(cfg.FourCC)))
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	if cfg.FPS > 0 {
		vc.Set(gocv.VideoCaptureFPS, cfg.FPS)
	}

	d := &Device{
		config: cfg,
		logger: logger,
		cap:    vc,
		meta: Metadata{
			Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
			Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
			FPS:    vc.Get(gocv.VideoCaptureFPS),
		},
	}

	logger.Info("capture opened",
		"device", cfg.Device,
		"width", d.meta.Width,
		"height", d.meta.Height,
		"fps", d.meta.FPS)

	return d, nil
}

// Read grabs the next frame into dst, mirrored if configured.
func (d *Device) Read(dst *gocv.Mat) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if ok := d.cap.Read(dst); !ok || dst.Empty() {
		return ErrRead
	}
	if d.config.Flip {
		gocv.Flip(*dst, dst, 1)
	}
	return nil
}

// IsOpened reports whether the device is still open.
func (d *Device) IsOpened() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && d.cap.IsOpened()
}

// Metadata returns the negotiated stream geometry.
func (d *Device) Metadata() Metadata {
	return d.meta
}

// Close releases the capture device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.logger.Info("capture released", "device", d.config.Device)
	return d.cap.Close()
}
