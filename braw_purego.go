//go:build darwin || linux

// BRAW engine binding via libbraw_shim using purego.
//
// The shim is a thin C wrapper over the vendor's COM-style asynchronous
// API: reads are submitted as jobs and a completion callback fires on an
// engine-owned worker thread once the read/decode/process chain finishes.
// The binding hides that behind AsyncDecoder and FrameCompletion.
//
// Library locations checked (in order):
//   - RAWBRIDGE_BRAW_LIB_PATH environment variable
//   - RAWBRIDGE_SDK_LIB_PATH environment variable
//   - Executable-relative paths
//   - System library paths

package rawbridge

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	brawOnce    sync.Once
	brawHandle  uintptr
	brawInitErr error
)

// libbraw_shim function pointers
var (
	brawFactoryCreate      func(sdkDir string) uintptr
	brawFactoryRelease     func(factory uintptr)
	brawFactoryCreateCodec func(factory uintptr) uintptr
	brawCodecRelease       func(codec uintptr)
	brawCodecSetCallback   func(codec uintptr, cb uintptr)
	brawCodecFlushJobs     func(codec uintptr)

	brawClipOpen       func(codec uintptr, path string) uintptr
	brawClipRelease    func(clip uintptr)
	brawClipWidth      func(clip uintptr) uint32
	brawClipHeight     func(clip uintptr) uint32
	brawClipFrameCount func(clip uintptr) uint64
	brawClipFrameRate  func(clip uintptr) float32
	brawClipTimecode   func(clip uintptr) uintptr
	brawClipHasAudio   func(clip uintptr) int32

	brawClipReadFrame func(clip uintptr, index uint64, scale int32, dst uintptr, dstLen uint64, token uint64) int32

	brawClipAudioInfo func(clip uintptr, rate, bits, channels, count uintptr) int32
	brawClipReadAudio func(clip uintptr, sampleIndex uint64, dst uintptr, dstCap uint64, maxSamples uint32, outSamples, outBytes uintptr) int32
)

const brawStatusOK = 0

// In-flight read jobs, keyed by the token passed through the shim and back
// into the completion callback. The callback runs on an engine thread, so
// the registry must be safe for cross-thread access.
var (
	brawPending   sync.Map // token uint64 -> *brawJob
	brawNextToken atomic.Uint64
	brawCallback  uintptr // purego.NewCallback result, created once
)

type brawJob struct {
	index uint64
	c     *FrameCompletion
}

func loadBRAW() error {
	brawOnce.Do(func() {
		brawInitErr = loadBRAWLib()
		if brawInitErr == nil {
			brawCallback = purego.NewCallback(brawFrameDone)
			setEngineAvailable(EngineBRAW)
		}
	})
	return brawInitErr
}

func loadBRAWLib() error {
	paths := engineLibPaths("RAWBRIDGE_BRAW_LIB_PATH", "libbraw_shim")

	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			brawHandle = handle
			loadBRAWSymbols()
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to load libbraw_shim: %w", lastErr)
}

func loadBRAWSymbols() {
	purego.RegisterLibFunc(&brawFactoryCreate, brawHandle, "braw_factory_create")
	purego.RegisterLibFunc(&brawFactoryRelease, brawHandle, "braw_factory_release")
	purego.RegisterLibFunc(&brawFactoryCreateCodec, brawHandle, "braw_factory_create_codec")
	purego.RegisterLibFunc(&brawCodecRelease, brawHandle, "braw_codec_release")
	purego.RegisterLibFunc(&brawCodecSetCallback, brawHandle, "braw_codec_set_callback")
	purego.RegisterLibFunc(&brawCodecFlushJobs, brawHandle, "braw_codec_flush_jobs")

	purego.RegisterLibFunc(&brawClipOpen, brawHandle, "braw_clip_open")
	purego.RegisterLibFunc(&brawClipRelease, brawHandle, "braw_clip_release")
	purego.RegisterLibFunc(&brawClipWidth, brawHandle, "braw_clip_width")
	purego.RegisterLibFunc(&brawClipHeight, brawHandle, "braw_clip_height")
	purego.RegisterLibFunc(&brawClipFrameCount, brawHandle, "braw_clip_frame_count")
	purego.RegisterLibFunc(&brawClipFrameRate, brawHandle, "braw_clip_frame_rate")
	purego.RegisterLibFunc(&brawClipTimecode, brawHandle, "braw_clip_timecode")
	purego.RegisterLibFunc(&brawClipHasAudio, brawHandle, "braw_clip_has_audio")
	purego.RegisterLibFunc(&brawClipReadFrame, brawHandle, "braw_clip_read_frame")
	purego.RegisterLibFunc(&brawClipAudioInfo, brawHandle, "braw_clip_audio_info")
	purego.RegisterLibFunc(&brawClipReadAudio, brawHandle, "braw_clip_read_audio")
}

// brawFrameDone is the completion callback. It runs on an engine-owned
// thread; the only shared state it touches is the pending-job registry and
// the job's completion signal.
func brawFrameDone(token uint64, status int32) {
	v, ok := brawPending.LoadAndDelete(token)
	if !ok {
		return
	}
	job := v.(*brawJob)

	res := FrameResult{Status: status}
	if status != brawStatusOK {
		res.Err = &DecodeError{Frame: job.index, Status: status}
	}
	job.c.Signal(res)
	job.c.Release()
}

// brawSDKDir resolves the directory holding the vendor SDK libraries that
// the shim loads underneath itself.
func brawSDKDir() string {
	if env := os.Getenv("RAWBRIDGE_BRAW_SDK_PATH"); env != "" {
		return env
	}
	if exe, err := os.Executable(); err == nil {
		osDir := "Linux"
		if runtime.GOOS == "darwin" {
			osDir = "Mac"
		}
		return filepath.Join(filepath.Dir(exe), "..", "sdk", "Libraries", osDir)
	}
	return filepath.Join("..", "sdk", "Libraries", "Linux")
}

// IsBRAWAvailable reports whether the BRAW shim library loaded.
func IsBRAWAvailable() bool {
	return loadBRAW() == nil
}

func init() {
	registerClipOpener(EngineBRAW, openBRAWClip)
}

// brawClip is an opened BRAW container. It owns the factory, codec and clip
// handles and releases them innermost-first on Close.
type brawClip struct {
	factory uintptr
	codec   uintptr
	clip    uintptr
	info    ClipInfo

	mu     sync.Mutex
	closed bool
}

func openBRAWClip(path string) (Clip, error) {
	if err := loadBRAW(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineInit, err)
	}

	sdkDir := brawSDKDir()
	factory := brawFactoryCreate(sdkDir)
	if factory == 0 {
		return nil, fmt.Errorf("%w: no BRAW factory, SDK libraries not found at %s", ErrEngineInit, sdkDir)
	}

	codec := brawFactoryCreateCodec(factory)
	if codec == 0 {
		brawFactoryRelease(factory)
		return nil, fmt.Errorf("%w: failed to create BRAW codec", ErrEngineInit)
	}
	brawCodecSetCallback(codec, brawCallback)

	clip := brawClipOpen(codec, path)
	if clip == 0 {
		brawCodecRelease(codec)
		brawFactoryRelease(factory)
		return nil, fmt.Errorf("%w: %s", ErrClipOpen, path)
	}

	timecode := goStringFromPtr(brawClipTimecode(clip))
	if timecode == "" {
		timecode = DefaultTimecode
	}

	return &brawClip{
		factory: factory,
		codec:   codec,
		clip:    clip,
		info: ClipInfo{
			Width:      brawClipWidth(clip),
			Height:     brawClipHeight(clip),
			FrameCount: brawClipFrameCount(clip),
			FrameRate:  RationalFromFPS(brawClipFrameRate(clip)),
			Timecode:   timecode,
			HasAudio:   brawClipHasAudio(clip) != 0,
		},
	}, nil
}

// Info implements Clip.
func (c *brawClip) Info() ClipInfo { return c.info }

// Engine implements Clip.
func (c *brawClip) Engine() Engine { return EngineBRAW }

// SubmitReadFrame implements AsyncDecoder. The engine takes a reference on
// the completion for the duration of the job and releases it after
// signaling from its callback thread.
func (c *brawClip) SubmitReadFrame(index uint64, mode DecodeMode, dst []byte, comp *FrameCompletion) error {
	token := brawNextToken.Add(1)
	comp.Retain()
	brawPending.Store(token, &brawJob{index: index, c: comp})

	status := brawClipReadFrame(
		c.clip,
		index,
		int32(mode.Factor()),
		uintptr(unsafe.Pointer(&dst[0])),
		uint64(len(dst)),
		token,
	)
	runtime.KeepAlive(dst)

	if status != brawStatusOK {
		// The job was rejected, so the callback will never fire for it.
		brawPending.Delete(token)
		comp.Release()
		return &DecodeError{Frame: index, Status: status}
	}
	return nil
}

// AudioInfo implements SampleReader.
func (c *brawClip) AudioInfo() (AudioInfo, error) {
	var rate, bits, channels uint32
	var count uint64
	status := brawClipAudioInfo(
		c.clip,
		uintptr(unsafe.Pointer(&rate)),
		uintptr(unsafe.Pointer(&bits)),
		uintptr(unsafe.Pointer(&channels)),
		uintptr(unsafe.Pointer(&count)),
	)
	if status != brawStatusOK {
		return AudioInfo{}, fmt.Errorf("%w: audio query failed (status=%d)", ErrNoAudio, status)
	}
	return AudioInfo{
		SampleRate:    rate,
		BitsPerSample: bits,
		Channels:      channels,
		SampleCount:   count,
	}, nil
}

// ReadSamples implements SampleReader.
func (c *brawClip) ReadSamples(sampleIndex uint64, dst []byte, maxSamples uint32) (uint32, int, error) {
	var samplesRead uint32
	var bytesRead uint32
	status := brawClipReadAudio(
		c.clip,
		sampleIndex,
		uintptr(unsafe.Pointer(&dst[0])),
		uint64(len(dst)),
		maxSamples,
		uintptr(unsafe.Pointer(&samplesRead)),
		uintptr(unsafe.Pointer(&bytesRead)),
	)
	runtime.KeepAlive(dst)
	if status != brawStatusOK {
		return 0, 0, fmt.Errorf("audio read at sample %d failed (status=%d)", sampleIndex, status)
	}
	return samplesRead, int(bytesRead), nil
}

// Close implements Clip. Cleanup runs in a fixed order once no more work
// will be submitted: stop callbacks, drain in-flight jobs, then release the
// handles outermost-last.
func (c *brawClip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	brawCodecFlushJobs(c.codec)
	brawCodecSetCallback(c.codec, 0)
	brawClipRelease(c.clip)
	brawCodecRelease(c.codec)
	brawFactoryRelease(c.factory)
	return nil
}
