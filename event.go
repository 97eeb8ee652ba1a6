package rawbridge

import (
	"io"

	"github.com/bytedance/sonic"
)

// Event types on the structured channel.
const (
	EventMetadata = "metadata"
	EventProgress = "progress"
	EventError    = "error"
	EventDone     = "done"
)

// MetadataEvent is always the first event of a run that produces output.
// Width and height are post-scale.
type MetadataEvent struct {
	Type       string `json:"type"`
	Timecode   string `json:"timecode"`
	FPSNum     uint32 `json:"fps_num"`
	FPSDen     uint32 `json:"fps_den"`
	Width      uint32 `json:"width"`
	Height     uint32 `json:"height"`
	FrameCount uint64 `json:"frame_count"`
}

// ProgressEvent reports one decoded and written frame. Frame is 1-based and
// strictly increasing; the final event's Frame equals Total.
type ProgressEvent struct {
	Type  string `json:"type"`
	Frame uint64 `json:"frame"`
	Total uint64 `json:"total"`
}

// ErrorEvent is terminal; no further events follow it.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DoneEvent is emitted exactly once on success.
type DoneEvent struct {
	Type string `json:"type"`
}

// Emitter serializes events to a line-delimited JSON channel. It holds no
// state across events; ordering is the caller's call order. Emitter methods
// never interleave partial lines: each call writes one complete object plus
// a trailing newline.
type Emitter struct {
	w io.Writer
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) emit(v any) error {
	line, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = e.w.Write(line)
	return err
}

// Metadata emits the clip metadata event with post-scale dimensions.
func (e *Emitter) Metadata(info ClipInfo, width, height uint32) error {
	return e.emit(MetadataEvent{
		Type:       EventMetadata,
		Timecode:   info.Timecode,
		FPSNum:     info.FrameRate.Num,
		FPSDen:     info.FrameRate.Den,
		Width:      width,
		Height:     height,
		FrameCount: info.FrameCount,
	})
}

// Progress emits a per-frame progress event.
func (e *Emitter) Progress(frame, total uint64) error {
	return e.emit(ProgressEvent{Type: EventProgress, Frame: frame, Total: total})
}

// Error emits a terminal error event. The message is string-escaped by the
// JSON encoder.
func (e *Emitter) Error(msg string) error {
	return e.emit(ErrorEvent{Type: EventError, Message: msg})
}

// Done emits the terminal success event.
func (e *Emitter) Done() error {
	return e.emit(DoneEvent{Type: EventDone})
}
