// Package config loads the gauge reader's configuration file and applies
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/teslashibe/go-gauge/pkg/camera"
	"github.com/teslashibe/go-gauge/pkg/display"
	"github.com/teslashibe/go-gauge/pkg/gauge"
	"github.com/teslashibe/go-gauge/pkg/session"
	"github.com/teslashibe/go-gauge/pkg/web"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid is returned when a loaded configuration fails validation.
	ErrInvalid = errors.New("config: invalid configuration")
	// ErrUnknownPreset is returned for a camera preset name that does not exist.
	ErrUnknownPreset = errors.New("config: unknown camera preset")
)

// File is the on-disk configuration. Sections left out of the file keep
// their defaults.
type File struct {
	Camera   camera.Config          `yaml:"camera"`
	Gauge    gauge.Config           `yaml:"gauge"`
	Session  session.Config         `yaml:"session"`
	Web      web.Config             `yaml:"web"`
	Recorder display.RecorderConfig `yaml:"recorder"`
}

// Default returns the configuration used when no file is given.
func Default() File {
	return File{
		Camera:   camera.DefaultConfig(),
		Gauge:    gauge.DefaultConfig(),
		Session:  session.DefaultConfig(),
		Web:      web.DefaultConfig(),
		Recorder: display.DefaultRecorderConfig(""),
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path loads only defaults and overrides.
func Load(path string) (File, error) {
	f := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	f.ApplyEnv()

	if problems := f.Validate(); len(problems) > 0 {
		return File{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return f, nil
}

// ApplyEnv applies GAUGE_CAMERA and GAUGE_WEB_ADDR.
func (f *File) ApplyEnv() {
	f.Camera.Device = Camera(f.Camera.Device)
	f.Web.Addr = WebAddr(f.Web.Addr)
}

// Validate checks every section and prefixes problems with its name.
func (f *File) Validate() []string {
	var problems []string
	add := func(section string, errs []string) {
		for _, e := range errs {
			problems = append(problems, section+": "+e)
		}
	}
	add("camera", f.Camera.Validate())
	add("gauge", f.Gauge.Validate())
	add("session", f.Session.Validate())
	add("web", f.Web.Validate())
	return problems
}

// ApplyPreset replaces the camera format with a named camera preset. The
// device chosen by the file or the environment is kept.
func (f *File) ApplyPreset(name string) error {
	preset := camera.GetPreset(name)
	if preset == nil {
		return fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, name, strings.Join(camera.PresetNames(), ", "))
	}
	device := f.Camera.Device
	f.Camera = *preset
	f.Camera.Device = device
	return nil
}

// Write saves f as YAML. Loading the written file yields f again.
func Write(f File, path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
