// rawbridge decodes camera RAW clips to raw rgb24 video on stdout and
// NDJSON metadata/progress events on stderr.
//
// Usage:
//
//	rawbridge --input <clip.braw|clip.R3D> [--debayer full|half|quarter|eighth]
//	rawbridge --input <clip> --extract-audio /path/to/output.wav
//	rawbridge --input <clip> --probe-only
package main

import (
	"bufio"
	"context"
	"flag"
	"os"

	"github.com/thesyncim/rawbridge"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		input        string
		debayer      string
		extractAudio string
		probeOnly    bool
	)
	flag.StringVar(&input, "input", "", "path to the RAW clip (required)")
	flag.StringVar(&input, "i", "", "shorthand for --input")
	flag.StringVar(&debayer, "debayer", "", "decode resolution: full, half, quarter, eighth (default: engine-specific)")
	flag.StringVar(&extractAudio, "extract-audio", "", "extract the audio track to a WAV file instead of streaming video")
	flag.BoolVar(&probeOnly, "probe-only", false, "emit the metadata event and exit without decoding")
	flag.Parse()

	// The event channel is the sole error-reporting surface; no error
	// detail ever reaches the binary channel.
	emitter := rawbridge.NewEmitter(os.Stderr)

	engine := rawbridge.DetectEngine(input)
	mode := engine.DefaultMode()
	if debayer != "" {
		var err error
		if mode, err = rawbridge.ParseDecodeMode(debayer); err != nil {
			emitter.Error(err.Error())
			return 1
		}
	}

	opts := rawbridge.Options{
		Input:        input,
		ExtractAudio: extractAudio,
		ProbeOnly:    probeOnly,
		Mode:         mode,
	}
	if err := opts.Validate(engine); err != nil {
		emitter.Error(err.Error())
		return 1
	}

	clip, err := rawbridge.OpenClip(engine, input)
	if err != nil {
		emitter.Error(err.Error())
		return 1
	}
	defer clip.Close()

	out := bufio.NewWriterSize(os.Stdout, 1<<20)
	defer out.Flush()

	return rawbridge.Run(context.Background(), clip, opts, out, emitter)
}
