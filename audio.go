package rawbridge

import (
	"fmt"
	"io"
	"os"
)

// audioChunkSamples is the per-call sample cap for the chunked read path,
// the chunk size the chunked engine's own samples use.
const audioChunkSamples = 48000

// defaultSampleRate is assumed when the block-oriented engine's metadata
// reports no sample rate.
const defaultSampleRate = 48000

// extractedAudio is the fully assembled PCM payload of a clip, ready for
// container assembly.
type extractedAudio struct {
	samples       []byte
	sampleCount   uint64 // samples per channel actually decoded
	sampleRate    uint32
	channels      uint32
	bitsPerSample uint32
}

// ExtractAudio decodes the clip's audio track and writes a PCM WAV file to
// path. The file is removed again if assembly fails partway; the 4 GiB
// container ceiling is checked before anything is written.
func ExtractAudio(clip Clip, path string) error {
	audio, err := extractPCM(clip)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	err = WriteWAV(f, audio.samples, audio.sampleCount, audio.sampleRate, audio.channels, audio.bitsPerSample)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ExtractAudioTo is ExtractAudio writing the container to w instead of a
// file.
func ExtractAudioTo(clip Clip, w io.Writer) error {
	audio, err := extractPCM(clip)
	if err != nil {
		return err
	}
	return WriteWAV(w, audio.samples, audio.sampleCount, audio.sampleRate, audio.channels, audio.bitsPerSample)
}

// extractPCM dispatches on the clip's audio access shape.
func extractPCM(clip Clip) (extractedAudio, error) {
	switch r := clip.(type) {
	case BlockReader:
		return extractBlocks(r)
	case SampleReader:
		return extractChunks(r)
	default:
		return extractedAudio{}, ErrNoAudio
	}
}

// extractChunks drives the random-access sample path: fixed-size chunk
// requests until the total sample count is consumed, tolerating a short
// final read. Sample words arrive little-endian and pass through untouched.
func extractChunks(r SampleReader) (extractedAudio, error) {
	info, err := r.AudioInfo()
	if err != nil {
		return extractedAudio{}, fmt.Errorf("%w: %v", ErrNoAudio, err)
	}
	if info.SampleCount == 0 {
		return extractedAudio{}, fmt.Errorf("%w: no audio samples", ErrNoAudio)
	}
	if info.Channels == 0 {
		return extractedAudio{}, fmt.Errorf("%w: no audio channels", ErrNoAudio)
	}

	totalBytes := info.DataSize(info.SampleCount)
	if totalBytes > wavMaxDataSize {
		return extractedAudio{}, ErrAudioTooLarge
	}

	out := make([]byte, totalBytes)
	chunkBytes := audioChunkSamples * int(info.Channels) * int(info.BytesPerSample())
	chunk := make([]byte, chunkBytes)

	var sampleIdx uint64
	var offset int
	for sampleIdx < info.SampleCount {
		samplesRead, bytesRead, err := r.ReadSamples(sampleIdx, chunk, audioChunkSamples)
		if err != nil || samplesRead == 0 {
			// A failing or empty read ends the track early; what was
			// decoded so far is still a valid recording.
			break
		}
		if offset+bytesRead > len(out) {
			bytesRead = len(out) - offset
		}
		copy(out[offset:offset+bytesRead], chunk[:bytesRead])
		offset += bytesRead
		sampleIdx += uint64(samplesRead)
	}

	return extractedAudio{
		samples:       out,
		sampleCount:   sampleIdx,
		sampleRate:    info.SampleRate,
		channels:      info.Channels,
		bitsPerSample: info.BitsPerSample,
	}, nil
}

// extractBlocks drives the sequential block path: every block decodes into
// one aligned, reused buffer sized to the engine's maximum block size.
// Sample words arrive as big-endian 32-bit integers regardless of the
// recorded bit depth and are byte-swapped in place before assembly.
func extractBlocks(r BlockReader) (extractedAudio, error) {
	blocks, maxBlockSize := r.AudioBlockInfo()
	if blocks == 0 || maxBlockSize == 0 {
		return extractedAudio{}, fmt.Errorf("%w: no audio blocks", ErrNoAudio)
	}

	info, err := r.AudioInfo()
	if err != nil {
		return extractedAudio{}, fmt.Errorf("%w: %v", ErrNoAudio, err)
	}
	if info.Channels == 0 {
		return extractedAudio{}, fmt.Errorf("%w: no audio channels", ErrNoAudio)
	}
	if info.SampleCount == 0 {
		return extractedAudio{}, fmt.Errorf("%w: no audio samples", ErrNoAudio)
	}

	sampleRate := info.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}

	// The engine always delivers 4-byte words per sample, so the container
	// is written as 32-bit PCM whatever the recorded depth.
	const bytesPerSample = 4
	totalBytes := info.SampleCount * uint64(info.Channels) * bytesPerSample
	if totalBytes > wavMaxDataSize {
		return extractedAudio{}, ErrAudioTooLarge
	}

	out := make([]byte, totalBytes)
	blockBuf, err := NewAlignedBuffer(maxBlockSize, AudioBufferAlign)
	if err != nil {
		return extractedAudio{}, err
	}

	var offset int
	for i := 0; i < blocks; i++ {
		n, err := r.DecodeAudioBlock(i, blockBuf.Bytes())
		if err != nil {
			return extractedAudio{}, fmt.Errorf("audio block %d: %w", i, err)
		}
		if n == 0 {
			break
		}

		decoded := blockBuf.Bytes()[:n]
		swapBE32(decoded)

		if offset+n > len(out) {
			n = len(out) - offset
		}
		copy(out[offset:offset+n], decoded[:n])
		offset += n
	}

	return extractedAudio{
		samples:       out,
		sampleCount:   info.SampleCount,
		sampleRate:    sampleRate,
		channels:      info.Channels,
		bitsPerSample: bytesPerSample * 8,
	}, nil
}
