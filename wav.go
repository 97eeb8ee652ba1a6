package rawbridge

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WAV container assembly. The layout is fixed little-endian RIFF with a
// 16-byte PCM fmt chunk followed by one data chunk; this is the one binary
// file format the bridge must reproduce bit-exactly.

const (
	wavHeaderSize  = 44
	wavFmtSize     = 16
	wavFormatPCM   = 1
	wavMaxDataSize = 0xFFFFFFFF // the RIFF size fields are 32-bit
)

// WAVHeader holds the parsed fields of a canonical 44-byte PCM WAV header.
type WAVHeader struct {
	RIFFSize      uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// WriteWAV writes a PCM WAV file: 44-byte header followed by the first
// dataSize bytes of samples, where dataSize is
// sampleCount*channels*(bitsPerSample/8). Returns ErrAudioTooLarge when
// dataSize exceeds the container's 32-bit size field; nothing is written in
// that case.
func WriteWAV(w io.Writer, samples []byte, sampleCount uint64, sampleRate, channels, bitsPerSample uint32) error {
	bytesPerSample := uint64(bitsPerSample / 8)
	dataSize64 := sampleCount * uint64(channels) * bytesPerSample
	if dataSize64 > wavMaxDataSize {
		return ErrAudioTooLarge
	}
	dataSize := uint32(dataSize64)
	if uint64(len(samples)) < dataSize64 {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(samples), dataSize)
	}

	byteRate := sampleRate * channels * uint32(bytesPerSample)
	blockAlign := uint16(channels * uint32(bytesPerSample))

	var hdr [wavHeaderSize]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36+dataSize)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], wavFmtSize)
	binary.LittleEndian.PutUint16(hdr[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:28], sampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], uint16(bitsPerSample))
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataSize)

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(samples[:dataSize])
	return err
}

// ParseWAVHeader parses the canonical 44-byte header written by WriteWAV.
func ParseWAVHeader(data []byte) (WAVHeader, error) {
	if len(data) < wavHeaderSize {
		return WAVHeader{}, fmt.Errorf("wav header truncated: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return WAVHeader{}, fmt.Errorf("not a RIFF/WAVE file")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		return WAVHeader{}, fmt.Errorf("unexpected chunk layout")
	}

	return WAVHeader{
		RIFFSize:      binary.LittleEndian.Uint32(data[4:8]),
		AudioFormat:   binary.LittleEndian.Uint16(data[20:22]),
		Channels:      binary.LittleEndian.Uint16(data[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(data[24:28]),
		ByteRate:      binary.LittleEndian.Uint32(data[28:32]),
		BlockAlign:    binary.LittleEndian.Uint16(data[32:34]),
		BitsPerSample: binary.LittleEndian.Uint16(data[34:36]),
		DataSize:      binary.LittleEndian.Uint32(data[40:44]),
	}, nil
}
