package rawbridge

import (
	"errors"
	"fmt"
)

// Options configures one run. A run is either a video stream, an audio
// extraction, or a metadata probe; the selector and decode mode are fixed
// for the lifetime of the run.
type Options struct {
	Input        string     // path to the RAW clip (required)
	ExtractAudio string     // write a WAV here instead of streaming video
	ProbeOnly    bool       // emit only the metadata event and exit
	Mode         DecodeMode // resolution scale for decode and metadata
}

// Validate checks the options against the engine that will open the clip.
func (o Options) Validate(engine Engine) error {
	if o.Input == "" {
		return errors.New("missing input path")
	}
	if o.ExtractAudio != "" && o.ProbeOnly {
		return errors.New("--extract-audio and --probe-only are mutually exclusive")
	}
	if engine == EngineUnknown {
		return fmt.Errorf("%w: unrecognized clip format: %s", ErrClipOpen, o.Input)
	}
	if !engine.SupportsMode(o.Mode) {
		return fmt.Errorf("%w: %s engine does not support %s", ErrInvalidMode, engine, o.Mode)
	}
	return nil
}
