package gauge

import (
	"log/slog"

	"github.com/teslashibe/go-gauge/pkg/gauge/detection"
	"gocv.io/x/gocv"
)

// Result is what one frame produced. Dial, Needle, Angle, Live and
// Displayed are either all set or all nil.
type Result struct {
	Dial      *detection.DialRegion    `json:"dial,omitempty"`
	Needle    *detection.NeedleSegment `json:"needle,omitempty"`
	Angle     *detection.Angle         `json:"angle,omitempty"`
	Live      *Reading                 `json:"live,omitempty"`      // the scale's reading for this frame
	Displayed *Reading                 `json:"displayed,omitempty"` // live or locked, as reported
	State     State                    `json:"state"`
	Stats     StatsSummary             `json:"stats"`
}

// OK reports whether the frame yielded a reading.
func (r Result) OK() bool {
	return r.Displayed != nil
}

// Reader runs the gauge pipeline on frames. It holds session state (the
// stabilizer and angle window) and must be used by one goroutine.
type Reader struct {
	locator    *detection.DialLocator
	extractor  *detection.NeedleExtractor
	scale      *Scale
	stabilizer *Stabilizer
	stats      *AngleStats
	annotator  *Annotator
	logger     *slog.Logger
}

// NewReader validates cfg and builds a reader for one session.
func NewReader(cfg Config, logger *slog.Logger) (*Reader, error) {
	if err := newConfigError("reader", cfg.Validate()); err != nil {
		return nil, err
	}
	scale, err := NewScale(cfg.Scale)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Reader{
		locator:    detection.NewDialLocator(cfg.Detection),
		extractor:  detection.NewNeedleExtractor(cfg.Detection),
		scale:      scale,
		stabilizer: NewStabilizer(cfg.Target),
		stats:      NewAngleStats(cfg.StatsWindow),
		logger:     logger,
	}
	if cfg.Annotate {
		r.annotator = NewAnnotator(scale)
	}
	return r, nil
}

// Scale returns the reader's scale.
func (r *Reader) Scale() *Scale {
	return r.scale
}

// Stabilizer returns the reader's latch.
func (r *Reader) Stabilizer() *Stabilizer {
	return r.stabilizer
}

// Process runs locate, extract, resolve, map and stabilize on frame, in
// that order, and draws the overlay on frame when a reading was made. A
// frame where any stage finds nothing is left untouched.
func (r *Reader) Process(frame *gocv.Mat) Result {
	res := Result{State: r.stabilizer.State(), Stats: r.stats.Summary()}

	dial, ok := r.locator.Locate(*frame)
	if !ok {
		r.logger.Debug("no dial in frame")
		return res
	}

	needle, ok := r.extractor.Extract(*frame, dial)
	if !ok {
		r.logger.Debug("no needle in dial", "center", dial.Center, "radius", dial.Radius)
		return res
	}

	angle := detection.ResolveAngle(needle)
	live := r.scale.Map(angle)
	if !live.Known {
		// Unreachable with a validated scale; flag it loudly.
		r.logger.Warn("needle angle outside scale", "angle", angle.Degrees())
	}

	wasLocked := r.stabilizer.State() == Locked
	displayed := r.stabilizer.Observe(live)
	if !wasLocked && r.stabilizer.State() == Locked {
		r.logger.Info("reading locked", "label", displayed.Label, "angle", angle.Degrees())
	}
	r.stats.Add(angle)

	res = Result{
		Dial:      &dial,
		Needle:    &needle,
		Angle:     &angle,
		Live:      &live,
		Displayed: &displayed,
		State:     r.stabilizer.State(),
		Stats:     r.stats.Summary(),
	}

	if r.annotator != nil {
		r.annotator.Draw(frame, res)
	}
	return res
}
