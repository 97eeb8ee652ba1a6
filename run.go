package rawbridge

import (
	"context"
	"io"
)

// clipOpeners maps an engine to its clip constructor. The purego bindings
// register themselves here when their shim library is loadable.
var clipOpeners [engineCount]func(path string) (Clip, error)

func registerClipOpener(e Engine, open func(path string) (Clip, error)) {
	if e < engineCount {
		clipOpeners[e] = open
	}
}

// OpenClip opens a RAW clip with the given engine. The returned Clip is
// owned exclusively by the caller and must be closed on every exit path.
func OpenClip(engine Engine, path string) (Clip, error) {
	if engine >= engineCount || clipOpeners[engine] == nil {
		return nil, ErrEngineInit
	}
	return clipOpeners[engine](path)
}

// Run executes one bridge run against an opened clip: audio extraction,
// metadata probe, or the full frame stream. Events go to the emitter; frame
// bytes go to binOut. The return value is the process exit status: 0 only
// on a clean done, 1 on any error. Exactly one error event is emitted on
// failure and nothing follows it.
func Run(ctx context.Context, clip Clip, opts Options, binOut io.Writer, emitter *Emitter) int {
	if opts.ExtractAudio != "" {
		if err := ExtractAudio(clip, opts.ExtractAudio); err != nil {
			emitter.Error(err.Error())
			return 1
		}
		emitter.Done()
		return 0
	}

	info := clip.Info()
	width, height := ScaledSize(info.Width, info.Height, opts.Mode)

	// Metadata is always the first event of a run with output.
	if err := emitter.Metadata(info, width, height); err != nil {
		return 1
	}
	if opts.ProbeOnly {
		return 0
	}

	pipeline, err := NewFramePipeline(FramePipelineConfig{
		Clip:    clip,
		Mode:    opts.Mode,
		Out:     binOut,
		Emitter: emitter,
	})
	if err != nil {
		emitter.Error(err.Error())
		return 1
	}

	if err := pipeline.Run(ctx); err != nil {
		emitter.Error(err.Error())
		return 1
	}

	emitter.Done()
	return 0
}
