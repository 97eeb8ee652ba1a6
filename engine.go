package rawbridge

import "sync/atomic"

// Engine identifies a vendor decode engine.
type Engine uint8

const (
	EngineUnknown Engine = iota
	EngineBRAW           // Blackmagic RAW, asynchronous job/callback API
	EngineR3D            // RED R3D, synchronous per-frame API
	engineCount
)

// DecodeShape describes how an engine delivers decoded frames.
type DecodeShape uint8

const (
	ShapeSync  DecodeShape = iota // blocking per-frame call
	ShapeAsync                    // job submission + completion callback
)

func (s DecodeShape) String() string {
	switch s {
	case ShapeSync:
		return "sync"
	case ShapeAsync:
		return "async"
	default:
		return "unknown"
	}
}

// engineMeta contains static metadata about an engine.
type engineMeta struct {
	Name        string
	Shape       DecodeShape
	Extensions  []string
	Modes       []DecodeMode // supported decode modes, first entry is the default
	AudioAccess string
}

// Static metadata table - indexed by Engine, zero allocations.
var engineInfo = [engineCount]engineMeta{
	EngineUnknown: {"unknown", ShapeSync, nil, nil, ""},
	EngineBRAW: {
		Name:        "braw",
		Shape:       ShapeAsync,
		Extensions:  []string{".braw"},
		Modes:       []DecodeMode{DecodeFull, DecodeHalf, DecodeQuarter},
		AudioAccess: "chunked",
	},
	EngineR3D: {
		Name:        "r3d",
		Shape:       ShapeSync,
		Extensions:  []string{".r3d"},
		Modes:       []DecodeMode{DecodeHalf, DecodeFull, DecodeQuarter, DecodeEighth},
		AudioAccess: "block",
	},
}

// Runtime availability - set by the purego bindings once their shim loads.
var engineAvailable [engineCount]atomic.Bool

// String returns the engine name.
func (e Engine) String() string {
	if e >= engineCount {
		return "unknown"
	}
	return engineInfo[e].Name
}

// Shape returns how the engine delivers decoded frames.
func (e Engine) Shape() DecodeShape {
	if e >= engineCount {
		return ShapeSync
	}
	return engineInfo[e].Shape
}

// DefaultMode returns the engine's default decode mode.
// R3D defaults to half resolution, BRAW to full.
func (e Engine) DefaultMode() DecodeMode {
	if e >= engineCount || len(engineInfo[e].Modes) == 0 {
		return DecodeFull
	}
	return engineInfo[e].Modes[0]
}

// SupportsMode returns true if the engine can decode at the given mode.
func (e Engine) SupportsMode(m DecodeMode) bool {
	if e >= engineCount {
		return false
	}
	for _, sm := range engineInfo[e].Modes {
		if sm == m {
			return true
		}
	}
	return false
}

// Available returns true if the engine's shim library loaded at runtime.
func (e Engine) Available() bool {
	if e >= engineCount {
		return false
	}
	return engineAvailable[e].Load()
}

// setEngineAvailable marks an engine as usable (called by the bindings).
func setEngineAvailable(e Engine) {
	if e < engineCount {
		engineAvailable[e].Store(true)
	}
}
