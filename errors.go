package rawbridge

import (
	"errors"
	"fmt"
)

// Common errors. Every error is terminal to the run: it is surfaced as
// exactly one Error event on the structured channel and the process exits
// non-zero. Nothing at this layer retries.
var (
	ErrInvalidMode    = errors.New("invalid debayer mode")
	ErrEngineInit     = errors.New("engine initialization failed")
	ErrClipOpen       = errors.New("failed to open clip")
	ErrNoAudio        = errors.New("clip has no audio")
	ErrAudioTooLarge  = errors.New("audio data too large for WAV format (exceeds 4 GiB)")
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrBufferAlloc    = errors.New("buffer allocation failed")
)

// DecodeError reports a per-frame or per-block engine failure. The status
// code is the engine's own, passed through untouched for diagnosis.
type DecodeError struct {
	Frame  uint64 // failing frame or block index
	Status int32  // engine status code
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed at frame %d (status=%d)", e.Frame, e.Status)
}
