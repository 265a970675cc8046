package config

import (
	"os"
	"strings"
)

// Environment variables that override the configuration file.
const (
	EnvConfig  = "GAUGE_CONFIG"
	EnvCamera  = "GAUGE_CAMERA"
	EnvWebAddr = "GAUGE_WEB_ADDR"
)

// Path returns the config file path from GAUGE_CONFIG.
// Falls back to the provided default if not set.
func Path(defaultPath string) string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return defaultPath
}

// Camera returns the capture device from GAUGE_CAMERA, or def.
func Camera(def string) string {
	if dev := strings.TrimSpace(os.Getenv(EnvCamera)); dev != "" {
		return dev
	}
	return def
}

// WebAddr returns the dashboard address from GAUGE_WEB_ADDR, or def.
// A bare port such as "8080" is accepted.
func WebAddr(def string) string {
	addr := strings.TrimSpace(os.Getenv(EnvWebAddr))
	if addr == "" {
		return def
	}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return addr
}
