package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-gauge/pkg/camera"
	"github.com/teslashibe/go-gauge/pkg/gauge"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gauge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	f := Default()
	assert.Empty(t, f.Validate())
}

func TestLoad_NoPath(t *testing.T) {
	t.Setenv(EnvCamera, "")
	t.Setenv(EnvWebAddr, "")

	f, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
}

func TestLoad_PartialFile(t *testing.T) {
	t.Setenv(EnvCamera, "")
	t.Setenv(EnvWebAddr, "")

	path := writeFile(t, `
camera:
  device: "2"
  width: 640
  height: 480
gauge:
  target: Sunny
  detection:
    min_radius: 30
session:
  frame_delay: 250ms
web:
  addr: ":9000"
`)

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2", f.Camera.Device)
	assert.Equal(t, 640, f.Camera.Width)
	assert.Equal(t, "MJPG", f.Camera.FourCC, "unset fields keep defaults")
	assert.Equal(t, gauge.LabelSunny, f.Gauge.Target)
	assert.Equal(t, 30, f.Gauge.Detection.MinRadius)
	assert.Equal(t, 300, f.Gauge.Detection.MaxRadius)
	assert.Len(t, f.Gauge.Scale.Intervals, 3)
	assert.Equal(t, 250*time.Millisecond, f.Session.FrameDelay)
	assert.Equal(t, ":9000", f.Web.Addr)
}

func TestLoad_CustomScale(t *testing.T) {
	path := writeFile(t, `
gauge:
  target: Low
  scale:
    intervals:
      - {min: -90, max: 0, label: Low}
      - {min: 0, max: 90, label: High}
    ticks: null
`)

	f, err := Load(path)
	require.NoError(t, err)

	scale, err := gauge.NewScale(f.Gauge.Scale)
	require.NoError(t, err)
	assert.Equal(t, "Low", scale.Map(0).Label)
	_, ok := scale.Ticks()
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "camera:\n  resolution: 4k\n"},
		{"bad yaml", "camera: [\n"},
		{"invalid camera", "camera:\n  width: 1\n"},
		{"gap in scale", "gauge:\n  scale:\n    intervals:\n      - {min: -90, max: 0, label: Low}\n      - {min: 10, max: 90, label: High}\n"},
		{"target not on scale", "gauge:\n  target: Hurricane\n"},
		{"negative delay", "session:\n  frame_delay: -1s\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidWrapsErrInvalid(t *testing.T) {
	_, err := Load(writeFile(t, "web:\n  jpeg_quality: 0\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Setenv(EnvCamera, "")
	t.Setenv(EnvWebAddr, "")

	f, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvCamera, "/videos/bench.mp4")
	t.Setenv(EnvWebAddr, "9090")

	f, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/videos/bench.mp4", f.Camera.Device)
	assert.Equal(t, ":9090", f.Web.Addr)
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfig, "")
	assert.Equal(t, "gauge.yaml", Path("gauge.yaml"))

	t.Setenv(EnvConfig, "/etc/gauge.yaml")
	assert.Equal(t, "/etc/gauge.yaml", Path("gauge.yaml"))
}

func TestWebAddr(t *testing.T) {
	tests := []struct {
		env, want string
	}{
		{"", ":8080"},
		{"9000", ":9000"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
		{"  :7000 ", ":7000"},
	}
	for _, tc := range tests {
		t.Setenv(EnvWebAddr, tc.env)
		assert.Equal(t, tc.want, WebAddr(":8080"), "env %q", tc.env)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Setenv(EnvCamera, "")
	t.Setenv(EnvWebAddr, "")

	want := Default()
	want.Camera.Device = "3"
	want.Session.FrameDelay = time.Second

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Write(want, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		preset string
		width  int
		height int
		fourcc string
		flip   bool
	}{
		{camera.PresetDefault, 1920, 1080, "MJPG", false},
		{camera.PresetLegacy, 640, 480, "MJPG", false},
		{camera.Preset720p, 1280, 720, "MJPG", false},
		{camera.PresetMirror, 1920, 1080, "MJPG", true},
	}

	for _, tc := range tests {
		t.Run(tc.preset, func(t *testing.T) {
			f := Default()
			f.Camera.Device = "/videos/bench.mp4"
			f.Camera.Width = 320

			require.NoError(t, f.ApplyPreset(tc.preset))
			assert.Equal(t, "/videos/bench.mp4", f.Camera.Device, "device survives the preset")
			assert.Equal(t, tc.width, f.Camera.Width)
			assert.Equal(t, tc.height, f.Camera.Height)
			assert.Equal(t, tc.fourcc, f.Camera.FourCC)
			assert.Equal(t, tc.flip, f.Camera.Flip)
			assert.Empty(t, f.Validate())
		})
	}
}

func TestApplyPreset_Unknown(t *testing.T) {
	f := Default()
	before := f.Camera

	err := f.ApplyPreset("8k")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Contains(t, err.Error(), camera.Preset720p)
	assert.Equal(t, before, f.Camera)
}
