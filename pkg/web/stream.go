package web

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
)

// mjpegBoundary separates parts of the multipart stream.
const mjpegBoundary = "frame"

// handleStream serves published frames as multipart/x-mixed-replace, which
// browsers render in a plain <img>.
func (s *Server) handleStream(c *fiber.Ctx) error {
	ch := s.subscribeStream()

	s.mu.RLock()
	first := s.jpeg
	s.mu.RUnlock()

	c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary="+mjpegBoundary)
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderConnection, "close")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer s.unsubscribeStream(ch)

		if first != nil {
			if err := writePart(w, first); err != nil {
				return
			}
		}
		for {
			select {
			case <-s.stopped:
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				if err := writePart(w, data); err != nil {
					return
				}
			}
		}
	})
	return nil
}

// writePart writes one JPEG part and flushes it to the client.
func writePart(w *bufio.Writer, data []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}
	return w.Flush()
}

func (s *Server) subscribeStream() chan []byte {
	ch := make(chan []byte, 1)
	s.mu.Lock()
	s.streams[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribeStream(ch chan []byte) {
	s.mu.Lock()
	delete(s.streams, ch)
	s.mu.Unlock()
}

// publishStream hands data to every stream. A stream still busy with the
// previous frame keeps that one and misses this.
func (s *Server) publishStream(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.streams {
		select {
		case ch <- data:
		default:
		}
	}
}

// StreamCount returns the number of open MJPEG streams.
func (s *Server) StreamCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams)
}
