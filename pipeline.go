package rawbridge

import (
	"context"
	"fmt"
	"io"
)

// FramePipeline drives a clip frame-by-frame and streams fixed-size rgb24
// buffers to the binary output channel in strict index order. It bridges
// both engine shapes: the synchronous per-frame call and the asynchronous
// job/callback chain. Either way at most one frame is in flight, which
// trades pipelined throughput for guaranteed ordering and O(1) buffer
// memory.
type FramePipeline struct {
	clip    Clip
	mode    DecodeMode
	out     io.Writer
	emitter *Emitter

	width  uint32
	height uint32

	stats PipelineStats
}

// PipelineStats provides frame pipeline counters.
type PipelineStats struct {
	FramesWritten uint64
	BytesWritten  uint64
}

// FramePipelineConfig configures a frame pipeline.
type FramePipelineConfig struct {
	Clip    Clip       // opened clip, must implement SyncDecoder or AsyncDecoder
	Mode    DecodeMode // resolution scale, validated against the engine
	Out     io.Writer  // binary output channel (unframed rgb24)
	Emitter *Emitter   // progress events
}

// NewFramePipeline creates a frame pipeline. The output dimensions are fixed
// here from the clip info and the decode mode; every frame buffer is sized
// to them.
func NewFramePipeline(config FramePipelineConfig) (*FramePipeline, error) {
	if config.Clip == nil {
		return nil, fmt.Errorf("clip is required")
	}
	if config.Out == nil {
		return nil, fmt.Errorf("output writer is required")
	}
	if config.Emitter == nil {
		return nil, fmt.Errorf("emitter is required")
	}

	info := config.Clip.Info()
	w, h := ScaledSize(info.Width, info.Height, config.Mode)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %dx%d at %s scale", ErrClipOpen, info.Width, info.Height, config.Mode)
	}

	return &FramePipeline{
		clip:    config.Clip,
		mode:    config.Mode,
		out:     config.Out,
		emitter: config.Emitter,
		width:   w,
		height:  h,
	}, nil
}

// OutputSize returns the post-scale frame dimensions.
func (p *FramePipeline) OutputSize() (width, height uint32) {
	return p.width, p.height
}

// Stats returns pipeline counters.
func (p *FramePipeline) Stats() PipelineStats {
	return p.stats
}

// Run decodes every frame of the clip in ascending index order. The first
// decode or write failure stops the loop; no partial frame bytes are ever
// written. Total output length on success is frameCount*width*height*3.
func (p *FramePipeline) Run(ctx context.Context) error {
	switch d := p.clip.(type) {
	case SyncDecoder:
		return p.runSync(ctx, d)
	case AsyncDecoder:
		return p.runAsync(ctx, d)
	default:
		return fmt.Errorf("clip implements neither SyncDecoder nor AsyncDecoder")
	}
}

// runSync is the blocking per-frame path. The engine delivers packed 3-byte
// pixels in reversed channel order into one reused buffer.
func (p *FramePipeline) runSync(ctx context.Context, dec SyncDecoder) error {
	total := p.clip.Info().FrameCount
	frameBytes := int(p.width) * int(p.height) * 3
	buf := make([]byte, frameBytes)

	for i := uint64(0); i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := dec.DecodeFrame(i, p.mode, buf); err != nil {
			return err
		}
		SwapRB(buf)
		if err := p.writeFrame(i, buf, total); err != nil {
			return err
		}
	}
	return nil
}

// runAsync is the job/callback path. The orchestrator submits one read job,
// blocks on the completion signal, and only then submits the next frame's
// read. The engine's worker thread chains the read callback into a
// decode-and-process callback internally and signals exactly once per frame.
func (p *FramePipeline) runAsync(ctx context.Context, dec AsyncDecoder) error {
	total := p.clip.Info().FrameCount
	pixels := int(p.width) * int(p.height)

	// Both buffers are allocated once and reused for every frame; the
	// one-in-flight handshake makes that safe.
	staging := make([]byte, pixels*4)
	rgb := make([]byte, pixels*3)

	for i := uint64(0); i < total; i++ {
		c := NewFrameCompletion(nil)
		if err := dec.SubmitReadFrame(i, p.mode, staging, c); err != nil {
			c.Release()
			return err
		}

		res, err := c.Wait(ctx)
		c.Release()
		if err != nil {
			return fmt.Errorf("waiting for frame %d: %w", i, err)
		}
		if res.Err != nil {
			return res.Err
		}

		DropAlpha(rgb, staging)
		if err := p.writeFrame(i, rgb, total); err != nil {
			return err
		}
	}
	return nil
}

// writeFrame writes one normalized frame and emits its progress event. The
// output is flushed per frame so the downstream consumer sees whole frames.
func (p *FramePipeline) writeFrame(index uint64, buf []byte, total uint64) error {
	if _, err := p.out.Write(buf); err != nil {
		return fmt.Errorf("write frame %d: %w", index, err)
	}
	if f, ok := p.out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush frame %d: %w", index, err)
		}
	}

	p.stats.FramesWritten++
	p.stats.BytesWritten += uint64(len(buf))

	return p.emitter.Progress(index+1, total)
}
