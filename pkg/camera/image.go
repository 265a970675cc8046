package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ImageSource serves a single still image once, then reports ErrRead.
// It backs one-shot readings of a photographed gauge.
type ImageSource struct {
	mu     sync.Mutex
	img    gocv.Mat
	served bool
	closed bool
}

// OpenImage loads path as a BGR image.
func OpenImage(path string) (*ImageSource, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("%w %q: unreadable image", ErrOpen, path)
	}
	return &ImageSource{img: img}, nil
}

// Read copies the image into dst on the first call.
func (s *ImageSource) Read(dst *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.served {
		return ErrRead
	}
	s.img.CopyTo(dst)
	s.served = true
	return nil
}

// IsOpened reports whether the image is still held.
func (s *ImageSource) IsOpened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Close releases the image.
func (s *ImageSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.img.Close()
}
