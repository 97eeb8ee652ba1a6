package rawbridge

// In-process fake engines for exercising the pipeline and extractor
// without the vendor shim libraries.

import (
	"encoding/binary"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"
)

// bufferAddr returns the address of a buffer's first byte, for alignment
// assertions.
func bufferAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// fakeSyncClip is a synchronous engine: DecodeFrame blocks and fills dst
// with packed BGR pixels derived from the frame index, the delivery order
// the real sync engine uses.
type fakeSyncClip struct {
	info   ClipInfo
	failAt int64 // frame index that fails, -1 for never
	closed bool
}

func newFakeSyncClip(w, h uint32, frames uint64) *fakeSyncClip {
	return &fakeSyncClip{
		info: ClipInfo{
			Width:      w,
			Height:     h,
			FrameCount: frames,
			FrameRate:  Rational{24, 1},
			Timecode:   "01:02:03:04",
		},
		failAt: -1,
	}
}

func (c *fakeSyncClip) Info() ClipInfo { return c.info }
func (c *fakeSyncClip) Engine() Engine { return EngineR3D }
func (c *fakeSyncClip) Close() error   { c.closed = true; return nil }

func (c *fakeSyncClip) DecodeFrame(index uint64, mode DecodeMode, dst []byte) error {
	if c.failAt >= 0 && uint64(c.failAt) == index {
		return &DecodeError{Frame: index, Status: -4}
	}
	fillBGR(dst, byte(index))
	return nil
}

// fillBGR writes the per-frame test pattern in engine (BGR) order: after
// SwapRB every pixel reads R=seed+2, G=seed+1, B=seed.
func fillBGR(dst []byte, seed byte) {
	for i := 0; i+2 < len(dst); i += 3 {
		dst[i] = seed
		dst[i+1] = seed + 1
		dst[i+2] = seed + 2
	}
}

// fakeAsyncClip is an asynchronous engine: SubmitReadFrame queues the job
// and a worker goroutine signals the completion later. Completion delay
// shrinks with the frame index, so any overlapping submissions would
// complete in reverse order - the ordering tests rely on that to prove the
// one-in-flight handshake. Jobs drain through an errgroup on Close.
type fakeAsyncClip struct {
	info   ClipInfo
	failAt int64
	delay  time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	submitted   []uint64

	g      errgroup.Group
	closed bool
}

func newFakeAsyncClip(w, h uint32, frames uint64) *fakeAsyncClip {
	return &fakeAsyncClip{
		info: ClipInfo{
			Width:      w,
			Height:     h,
			FrameCount: frames,
			FrameRate:  Rational{24000, 1001},
			Timecode:   "10:20:30:00",
		},
		failAt: -1,
		delay:  time.Millisecond,
	}
}

func (c *fakeAsyncClip) Info() ClipInfo { return c.info }
func (c *fakeAsyncClip) Engine() Engine { return EngineBRAW }

func (c *fakeAsyncClip) Close() error {
	c.closed = true
	return c.g.Wait()
}

func (c *fakeAsyncClip) SubmitReadFrame(index uint64, mode DecodeMode, dst []byte, comp *FrameCompletion) error {
	c.submitted = append(c.submitted, index)
	if n := c.inFlight.Add(1); n > c.maxInFlight.Load() {
		c.maxInFlight.Store(n)
	}

	comp.Retain()
	total := c.info.FrameCount
	c.g.Go(func() error {
		// Later frames finish sooner.
		time.Sleep(time.Duration(total-index) * c.delay)
		defer c.inFlight.Add(-1)
		defer comp.Release()

		if c.failAt >= 0 && uint64(c.failAt) == index {
			comp.Signal(FrameResult{Status: -2, Err: &DecodeError{Frame: index, Status: -2}})
			return nil
		}
		fillRGBA(dst, byte(index))
		comp.Signal(FrameResult{Status: 0})
		return nil
	})
	return nil
}

// fillRGBA writes the async engine's delivery pattern: R=seed+2, G=seed+1,
// B=seed, A=0xFF, matching fillBGR after normalization on both paths.
func fillRGBA(dst []byte, seed byte) {
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i] = seed + 2
		dst[i+1] = seed + 1
		dst[i+2] = seed
		dst[i+3] = 0xFF
	}
}

// fakeChunkClip implements the chunked random-access audio shape with
// little-endian source samples and a configurable per-call cap.
type fakeChunkClip struct {
	fakeSyncClip
	audio    AudioInfo
	pcm      []byte // full little-endian payload
	maxChunk uint32 // per-call sample cap, 0 = audioChunkSamples
}

func (c *fakeChunkClip) AudioInfo() (AudioInfo, error) { return c.audio, nil }

func (c *fakeChunkClip) ReadSamples(sampleIndex uint64, dst []byte, maxSamples uint32) (uint32, int, error) {
	if sampleIndex >= c.audio.SampleCount {
		return 0, 0, nil
	}
	chunkCap := c.maxChunk
	if chunkCap == 0 {
		chunkCap = audioChunkSamples
	}
	n := c.audio.SampleCount - sampleIndex
	if uint64(chunkCap) < n {
		n = uint64(chunkCap)
	}
	if uint64(maxSamples) < n {
		n = uint64(maxSamples)
	}

	frame := int(c.audio.Channels) * int(c.audio.BytesPerSample())
	off := int(sampleIndex) * frame
	bytes := int(n) * frame
	copy(dst, c.pcm[off:off+bytes])
	return uint32(n), bytes, nil
}

// fakeBlockClip implements the block-oriented audio shape with big-endian
// 32-bit source words. misaligned records any decode call that arrived with
// a misaligned buffer.
type fakeBlockClip struct {
	fakeSyncClip
	audio      AudioInfo
	blocks     [][]byte // big-endian payload per block
	failBlock  int      // block index that fails, -1 for never
	misaligned bool
}

func (c *fakeBlockClip) AudioInfo() (AudioInfo, error) { return c.audio, nil }

func (c *fakeBlockClip) AudioBlockInfo() (int, int) {
	max := 0
	for _, b := range c.blocks {
		if len(b) > max {
			max = len(b)
		}
	}
	return len(c.blocks), max
}

func (c *fakeBlockClip) DecodeAudioBlock(i int, dst []byte) (int, error) {
	if bufferAddr(dst)%AudioBufferAlign != 0 {
		c.misaligned = true
	}
	if c.failBlock >= 0 && c.failBlock == i {
		return 0, &DecodeError{Frame: uint64(i), Status: -9}
	}
	return copy(dst, c.blocks[i]), nil
}

// bePCM packs int32 samples as big-endian words, the block engine's
// delivery format.
func bePCM(samples []int32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.BigEndian.PutUint32(out[i*4:], uint32(s))
	}
	return out
}

// lePCM packs int32 samples as little-endian words.
func lePCM(samples []int32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(s))
	}
	return out
}
