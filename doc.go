// Package rawbridge decodes proprietary camera RAW clips into a raw
// rgb24 frame stream plus an NDJSON event stream, backed by native
// vendor decode engines (libbraw_shim, libr3d_shim).
//
// Key pieces include:
//   - Clip and the engine-shaped decode interfaces (SyncDecoder, AsyncDecoder)
//   - FramePipeline bridging either engine shape into one strictly-ordered,
//     bounded-memory output stream
//   - AudioExtractor assembling a PCM WAV file from chunked or block-oriented
//     sample delivery
//   - Emitter writing metadata/progress/error/done events, one JSON object
//     per line
//
// # Architecture
//
//	Video: Clip -> FramePipeline -> rgb24 bytes (stdout) + events (stderr)
//	Audio: Clip -> AudioExtractor -> PCM WAV file + events (stderr)
//
// # Native Libraries
//
// Bindings load the vendor engine shims at runtime via purego
// (CGO_ENABLED=0). Set RAWBRIDGE_SDK_LIB_PATH to the directory containing
// the shim libraries; per-engine overrides RAWBRIDGE_BRAW_LIB_PATH and
// RAWBRIDGE_R3D_LIB_PATH take precedence. Absent both, the libraries are
// resolved relative to the running executable with a final conventional
// relative fallback.
//
// # Engines
//
// BRAW clips decode through an asynchronous job/callback API; R3D clips
// decode through a synchronous per-frame call. The pipeline output is
// identical for both: packed 3-byte RGB, no inter-frame framing.
// Availability depends on which shim libraries are present at runtime.
package rawbridge
