//go:build darwin || linux

// R3D engine binding via libr3d_shim using purego.
//
// The shim wraps the vendor's synchronous API: one blocking call decodes
// one frame into a caller-supplied buffer, and audio decodes block by block
// into a 512-byte-aligned buffer as big-endian 32-bit words.
//
// Library locations checked (in order):
//   - RAWBRIDGE_R3D_LIB_PATH environment variable
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
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	r3dOnce    sync.Once
	r3dHandle  uintptr
	r3dInitErr error
)

// libr3d_shim function pointers
var (
	r3dSdkInit  func(libDir string) int32
	r3dClipOpen func(path string) uintptr
	r3dClipFree func(clip uintptr)

	r3dClipWidth      func(clip uintptr) uint32
	r3dClipHeight     func(clip uintptr) uint32
	r3dClipFrameCount func(clip uintptr) uint64
	r3dClipFrameRate  func(clip uintptr) float32
	r3dClipTimecode   func(clip uintptr, absolute int32) uintptr

	r3dClipDecodeFrame func(clip uintptr, index uint64, mode int32, dst uintptr, dstCap uint64) int32

	r3dClipAudioBlockCount func(clip uintptr, maxBlockSize uintptr) uint64
	r3dClipAudioChannels   func(clip uintptr) uint32
	r3dClipAudioSampleRate func(clip uintptr) uint32
	r3dClipAudioSamples    func(clip uintptr) uint64
	r3dClipDecodeAudio     func(clip uintptr, block uint64, dst uintptr, sizeInOut uintptr) int32
)

const r3dStatusOK = 0

// Decode mode constants from r3d_shim.h.
const (
	r3dModeFullPremium = 0
	r3dModeHalfGood    = 1
	r3dModeQuarterGood = 2
	r3dModeEighthGood  = 3
)

func r3dShimMode(m DecodeMode) int32 {
	switch m {
	case DecodeHalf:
		return r3dModeHalfGood
	case DecodeQuarter:
		return r3dModeQuarterGood
	case DecodeEighth:
		return r3dModeEighthGood
	default:
		return r3dModeFullPremium
	}
}

func loadR3D() error {
	r3dOnce.Do(func() {
		r3dInitErr = loadR3DLib()
		if r3dInitErr == nil {
			setEngineAvailable(EngineR3D)
		}
	})
	return r3dInitErr
}

func loadR3DLib() error {
	paths := engineLibPaths("RAWBRIDGE_R3D_LIB_PATH", "libr3d_shim")

	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			r3dHandle = handle
			loadR3DSymbols()
			sdkDir := r3dSDKDir()
			if status := r3dSdkInit(sdkDir); status != r3dStatusOK {
				return fmt.Errorf("R3D SDK initialization failed (status=%d), dynamic libraries not found at %s", status, sdkDir)
			}
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to load libr3d_shim: %w", lastErr)
}

func loadR3DSymbols() {
	purego.RegisterLibFunc(&r3dSdkInit, r3dHandle, "r3d_sdk_init")
	purego.RegisterLibFunc(&r3dClipOpen, r3dHandle, "r3d_clip_open")
	purego.RegisterLibFunc(&r3dClipFree, r3dHandle, "r3d_clip_free")
	purego.RegisterLibFunc(&r3dClipWidth, r3dHandle, "r3d_clip_width")
	purego.RegisterLibFunc(&r3dClipHeight, r3dHandle, "r3d_clip_height")
	purego.RegisterLibFunc(&r3dClipFrameCount, r3dHandle, "r3d_clip_frame_count")
	purego.RegisterLibFunc(&r3dClipFrameRate, r3dHandle, "r3d_clip_frame_rate")
	purego.RegisterLibFunc(&r3dClipTimecode, r3dHandle, "r3d_clip_timecode")
	purego.RegisterLibFunc(&r3dClipDecodeFrame, r3dHandle, "r3d_clip_decode_frame")
	purego.RegisterLibFunc(&r3dClipAudioBlockCount, r3dHandle, "r3d_clip_audio_block_count")
	purego.RegisterLibFunc(&r3dClipAudioChannels, r3dHandle, "r3d_clip_audio_channels")
	purego.RegisterLibFunc(&r3dClipAudioSampleRate, r3dHandle, "r3d_clip_audio_sample_rate")
	purego.RegisterLibFunc(&r3dClipAudioSamples, r3dHandle, "r3d_clip_audio_samples")
	purego.RegisterLibFunc(&r3dClipDecodeAudio, r3dHandle, "r3d_clip_decode_audio_block")
}

// r3dSDKDir resolves the vendor SDK's redistributable library directory.
func r3dSDKDir() string {
	if env := os.Getenv("RAWBRIDGE_R3D_SDK_PATH"); env != "" {
		return env
	}
	if exe, err := os.Executable(); err == nil {
		osDir := "linux"
		if runtime.GOOS == "darwin" {
			osDir = "mac"
		}
		return filepath.Join(filepath.Dir(exe), "..", "sdk", "Redistributable", osDir)
	}
	return filepath.Join("sdk", "Redistributable", "linux")
}

// IsR3DAvailable reports whether the R3D shim library loaded and the SDK
// initialized.
func IsR3DAvailable() bool {
	return loadR3D() == nil
}

func init() {
	registerClipOpener(EngineR3D, openR3DClip)
}

// r3dClip is an opened R3D container.
type r3dClip struct {
	clip uintptr
	info ClipInfo

	mu     sync.Mutex
	closed bool
}

func openR3DClip(path string) (Clip, error) {
	if err := loadR3D(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineInit, err)
	}

	clip := r3dClipOpen(path)
	if clip == 0 {
		return nil, fmt.Errorf("%w: %s", ErrClipOpen, path)
	}

	width := r3dClipWidth(clip)
	height := r3dClipHeight(clip)
	frameCount := r3dClipFrameCount(clip)
	if width == 0 || height == 0 || frameCount == 0 {
		r3dClipFree(clip)
		return nil, fmt.Errorf("%w: clip has zero width, height or frames", ErrClipOpen)
	}

	// Absolute timecode first, edge timecode second, fixed fallback last.
	timecode := goStringFromPtr(r3dClipTimecode(clip, 1))
	if timecode == "" {
		timecode = goStringFromPtr(r3dClipTimecode(clip, 0))
	}
	if timecode == "" {
		timecode = DefaultTimecode
	}

	var maxBlockSize uint64
	blocks := r3dClipAudioBlockCount(clip, uintptr(unsafe.Pointer(&maxBlockSize)))

	return &r3dClip{
		clip: clip,
		info: ClipInfo{
			Width:      width,
			Height:     height,
			FrameCount: frameCount,
			FrameRate:  RationalFromFPS(r3dClipFrameRate(clip)),
			Timecode:   timecode,
			HasAudio:   blocks > 0,
		},
	}, nil
}

// Info implements Clip.
func (c *r3dClip) Info() ClipInfo { return c.info }

// Engine implements Clip.
func (c *r3dClip) Engine() Engine { return EngineR3D }

// DecodeFrame implements SyncDecoder. The call blocks until the frame is
// decoded into dst as packed 3-byte BGR.
func (c *r3dClip) DecodeFrame(index uint64, mode DecodeMode, dst []byte) error {
	status := r3dClipDecodeFrame(
		c.clip,
		index,
		r3dShimMode(mode),
		uintptr(unsafe.Pointer(&dst[0])),
		uint64(len(dst)),
	)
	runtime.KeepAlive(dst)
	if status != r3dStatusOK {
		return &DecodeError{Frame: index, Status: status}
	}
	return nil
}

// AudioInfo implements BlockReader. The engine delivers 4-byte words per
// sample regardless of the recorded bit depth.
func (c *r3dClip) AudioInfo() (AudioInfo, error) {
	return AudioInfo{
		SampleRate:    r3dClipAudioSampleRate(c.clip),
		BitsPerSample: 32,
		Channels:      r3dClipAudioChannels(c.clip),
		SampleCount:   r3dClipAudioSamples(c.clip),
	}, nil
}

// AudioBlockInfo implements BlockReader.
func (c *r3dClip) AudioBlockInfo() (int, int) {
	var maxBlockSize uint64
	blocks := r3dClipAudioBlockCount(c.clip, uintptr(unsafe.Pointer(&maxBlockSize)))
	return int(blocks), int(maxBlockSize)
}

// DecodeAudioBlock implements BlockReader. dst must be aligned to
// AudioBufferAlign bytes.
func (c *r3dClip) DecodeAudioBlock(i int, dst []byte) (int, error) {
	size := uint64(len(dst))
	status := r3dClipDecodeAudio(
		c.clip,
		uint64(i),
		uintptr(unsafe.Pointer(&dst[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	runtime.KeepAlive(dst)
	if status != r3dStatusOK {
		return 0, &DecodeError{Frame: uint64(i), Status: status}
	}
	return int(size), nil
}

// Close implements Clip. The SDK itself stays initialized for the process
// lifetime; only the clip handle is released here.
func (c *r3dClip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	r3dClipFree(c.clip)
	return nil
}
