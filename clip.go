package rawbridge

import "io"

// DefaultTimecode is reported when a clip carries no usable timecode track.
const DefaultTimecode = "00:00:00:00"

// ClipInfo describes an opened RAW clip at full sensor resolution.
type ClipInfo struct {
	Width      uint32   // full-resolution width in pixels
	Height     uint32   // full-resolution height in pixels
	FrameCount uint64   // number of video frames
	FrameRate  Rational // exact frame rate
	Timecode   string   // timecode of frame 0, DefaultTimecode if absent
	HasAudio   bool     // true if the clip carries an audio track
}

// AudioInfo describes a clip's embedded audio track.
type AudioInfo struct {
	SampleRate    uint32 // samples per second per channel
	BitsPerSample uint32 // always a multiple of 8
	Channels      uint32 // interleaved channel count
	SampleCount   uint64 // total samples per channel
}

// BytesPerSample returns the byte width of one sample word.
func (a AudioInfo) BytesPerSample() uint32 {
	return a.BitsPerSample / 8
}

// DataSize returns the total PCM payload size in bytes for sampleCount
// samples per channel.
func (a AudioInfo) DataSize(sampleCount uint64) uint64 {
	return sampleCount * uint64(a.Channels) * uint64(a.BytesPerSample())
}

// Clip is an opened RAW container. The handle is owned exclusively by one
// run and must be closed on every exit path. A Clip additionally implements
// exactly one of SyncDecoder or AsyncDecoder, and HasAudio clips implement
// SampleReader or BlockReader depending on the engine.
type Clip interface {
	io.Closer

	// Info returns the clip metadata at full resolution.
	Info() ClipInfo

	// Engine returns which engine opened this clip.
	Engine() Engine
}

// SyncDecoder is the synchronous engine shape: one blocking call decodes one
// frame into dst. dst must hold ScaledSize(w,h,mode) * 3 bytes; the engine
// delivers packed 3-byte pixels in reversed (BGR) channel order.
type SyncDecoder interface {
	DecodeFrame(index uint64, mode DecodeMode, dst []byte) error
}

// AsyncDecoder is the asynchronous engine shape: SubmitReadFrame queues a
// read job and returns; the engine's worker thread chains read into
// decode-and-process internally and signals c exactly once, success or
// failure, with the decoded pixels written to dst. dst must hold
// ScaledSize(w,h,mode) * 4 bytes; the engine delivers packed 4-byte RGBA.
//
// The callee retains c until it has signaled; callers must not submit the
// next frame before the current completion fires.
type AsyncDecoder interface {
	SubmitReadFrame(index uint64, mode DecodeMode, dst []byte, c *FrameCompletion) error
}

// SampleReader is the chunked random-access audio shape (BRAW). ReadSamples
// decodes up to maxSamples samples per channel starting at sampleIndex into
// dst and reports how many samples and bytes were produced. The engine caps
// each call at its internal chunk size; the final call may return fewer
// samples than requested. Sample words are already little-endian.
type SampleReader interface {
	AudioInfo() (AudioInfo, error)
	ReadSamples(sampleIndex uint64, dst []byte, maxSamples uint32) (samplesRead uint32, bytesRead int, err error)
}

// BlockReader is the sequential block-oriented audio shape (R3D). Blocks are
// opaque and must be decoded in order into a buffer aligned to
// AudioBufferAlign bytes. Sample words are big-endian 32-bit regardless of
// the recorded bit depth.
type BlockReader interface {
	AudioInfo() (AudioInfo, error)

	// AudioBlockInfo returns the number of audio blocks and the maximum
	// decoded size of any single block in bytes.
	AudioBlockInfo() (blocks int, maxBlockSize int)

	// DecodeAudioBlock decodes block i into dst and returns the number of
	// bytes written.
	DecodeAudioBlock(i int, dst []byte) (int, error)
}

// AudioBufferAlign is the byte alignment the block-oriented engine requires
// for audio decode buffers.
const AudioBufferAlign = 512
