package receipt

import (
	"context"
	"time"
)

// FrameSource abstracts the camera stream: frames in, release on Close.
// Implementations must tolerate Close being the only call after Open.
type FrameSource interface {
	Open() error
	ReadFrame() ([]byte, error)
	Close() error
}

// DecodeFunc turns one captured frame into a string payload. ok=false means
// this frame had no decodable code in it, which is normal — the scanner just
// tries the next frame.
type DecodeFunc func(frame []byte) (payload string, ok bool)

// Scanner drives the capture loop around a FrameSource. The decode itself is
// a commodity concern and stays injected; what the scanner owns is the
// lifecycle: the source is acquired only while running and released
// unconditionally on success, error, or cancellation.
type Scanner struct {
	Source FrameSource
	Decode DecodeFunc
	// Interval between frame samples. Defaults to 100ms.
	Interval time.Duration
}

// Run captures frames until one decodes, the context is cancelled, or the
// source fails. Decode failures on a given frame are silently retried on the
// next frame, unbounded, until success or cancel.
func (s *Scanner) Run(ctx context.Context, onDecode func(payload string)) error {
	if err := s.Source.Open(); err != nil {
		return err
	}
	defer s.Source.Close()

	interval := s.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		frame, err := s.Source.ReadFrame()
		if err != nil {
			return err
		}
		if payload, ok := s.Decode(frame); ok {
			onDecode(payload)
			return nil
		}
	}
}
