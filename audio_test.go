package rawbridge

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractChunkedRoundTrip(t *testing.T) {
	pcm := lePCM([]int32{
		10, -10, 20, -20, 30, -30, 40, -40, 50, -50,
		60, -60, 70, -70, 80, -80, 90, -90, 100, -100,
	})
	clip := &fakeChunkClip{
		audio: AudioInfo{
			SampleRate:    48000,
			BitsPerSample: 32,
			Channels:      2,
			SampleCount:   10,
		},
		pcm:      pcm,
		maxChunk: 3, // forces several calls and a short final read
	}

	var buf bytes.Buffer
	if err := ExtractAudioTo(clip, &buf); err != nil {
		t.Fatal(err)
	}

	hdr, err := ParseWAVHeader(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if hdr.RIFFSize != 36+hdr.DataSize {
		t.Errorf("riff_size = %d, want %d", hdr.RIFFSize, 36+hdr.DataSize)
	}
	if hdr.BlockAlign != uint16(2*4) {
		t.Errorf("block_align = %d", hdr.BlockAlign)
	}
	if hdr.ByteRate != 48000*2*4 {
		t.Errorf("byte_rate = %d", hdr.ByteRate)
	}
	if hdr.DataSize != uint32(len(pcm)) {
		t.Errorf("data_size = %d, want %d", hdr.DataSize, len(pcm))
	}
	// Chunked samples are already little-endian and pass through untouched.
	if !bytes.Equal(buf.Bytes()[44:], pcm) {
		t.Error("payload differs from source samples")
	}
}

func TestExtractBlocksByteSwap(t *testing.T) {
	// Two blocks of big-endian words; 6 samples per channel, 1 channel.
	words := []int32{0x01020304, -0x01020304, 0x7FFFFFFF, -1, 0, 42}
	clip := &fakeBlockClip{
		audio: AudioInfo{
			SampleRate:    48000,
			BitsPerSample: 24, // recorded depth; delivery is 4-byte words
			Channels:      1,
			SampleCount:   6,
		},
		blocks: [][]byte{
			bePCM(words[:4]),
			bePCM(words[4:]),
		},
		failBlock: -1,
	}

	var buf bytes.Buffer
	if err := ExtractAudioTo(clip, &buf); err != nil {
		t.Fatal(err)
	}
	if clip.misaligned {
		t.Error("decode buffer was not 512-byte aligned")
	}

	hdr, err := ParseWAVHeader(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	// The container is always 32-bit PCM on the block path.
	if hdr.BitsPerSample != 32 {
		t.Errorf("bits_per_sample = %d, want 32", hdr.BitsPerSample)
	}
	if !bytes.Equal(buf.Bytes()[44:], lePCM(words)) {
		t.Error("payload was not byte-swapped to little-endian")
	}
}

func TestExtractBlocksDefaultSampleRate(t *testing.T) {
	clip := &fakeBlockClip{
		audio: AudioInfo{
			SampleRate:  0, // metadata missing
			Channels:    1,
			SampleCount: 2,
		},
		blocks:    [][]byte{bePCM([]int32{1, 2})},
		failBlock: -1,
	}

	var buf bytes.Buffer
	if err := ExtractAudioTo(clip, &buf); err != nil {
		t.Fatal(err)
	}
	hdr, err := ParseWAVHeader(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if hdr.SampleRate != 48000 {
		t.Errorf("sample_rate = %d, want 48000 fallback", hdr.SampleRate)
	}
}

func TestExtractAudioNoTrack(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
	}{
		{"no audio interface", newFakeSyncClip(8, 4, 1)},
		{"zero blocks", &fakeBlockClip{
			audio:     AudioInfo{SampleRate: 48000, Channels: 2, SampleCount: 100},
			failBlock: -1,
		}},
		{"zero channels", &fakeBlockClip{
			audio:     AudioInfo{SampleRate: 48000, SampleCount: 100},
			blocks:    [][]byte{bePCM([]int32{1})},
			failBlock: -1,
		}},
		{"zero samples chunked", &fakeChunkClip{
			audio: AudioInfo{SampleRate: 48000, BitsPerSample: 32, Channels: 2},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := ExtractAudioTo(tt.clip, &buf)
			if !errors.Is(err, ErrNoAudio) {
				t.Fatalf("err = %v, want ErrNoAudio", err)
			}
			if buf.Len() != 0 {
				t.Errorf("wrote %d bytes on failure", buf.Len())
			}
		})
	}
}

func TestExtractAudioOverflowGuard(t *testing.T) {
	// sample_count * channels * 4 bytes exceeds the 32-bit size field:
	// extraction must fail before any allocation or write.
	clip := &fakeBlockClip{
		audio: AudioInfo{
			SampleRate:  48000,
			Channels:    2,
			SampleCount: 1 << 31,
		},
		blocks:    [][]byte{bePCM([]int32{1})},
		failBlock: -1,
	}

	var buf bytes.Buffer
	if err := ExtractAudioTo(clip, &buf); !errors.Is(err, ErrAudioTooLarge) {
		t.Fatalf("err = %v, want ErrAudioTooLarge", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes despite overflow", buf.Len())
	}
}

func TestExtractAudioRemovesFileOnFailure(t *testing.T) {
	clip := &fakeBlockClip{
		audio: AudioInfo{
			SampleRate:  48000,
			Channels:    1,
			SampleCount: 4,
		},
		blocks:    [][]byte{bePCM([]int32{1, 2}), bePCM([]int32{3, 4})},
		failBlock: 1,
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	if err := ExtractAudio(clip, path); err == nil {
		t.Fatal("expected block decode failure")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: stat err = %v", err)
	}
}

func TestExtractAudioWritesFile(t *testing.T) {
	clip := &fakeBlockClip{
		audio: AudioInfo{
			SampleRate:  44100,
			Channels:    1,
			SampleCount: 2,
		},
		blocks:    [][]byte{bePCM([]int32{7, -7})},
		failBlock: -1,
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	if err := ExtractAudio(clip, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	hdr, err := ParseWAVHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.SampleRate != 44100 || hdr.Channels != 1 {
		t.Errorf("header = %+v", hdr)
	}
}
