package rawbridge

import (
	"path/filepath"
	"strings"
)

// DetectEngine picks the decode engine for a clip path by file extension.
// Returns EngineUnknown for anything that is not a known RAW container.
func DetectEngine(path string) Engine {
	ext := strings.ToLower(filepath.Ext(path))
	for e := Engine(1); e < engineCount; e++ {
		for _, known := range engineInfo[e].Extensions {
			if ext == known {
				return e
			}
		}
	}
	return EngineUnknown
}

// DetectEngineFromHeader sniffs the engine from the first bytes of a clip,
// for callers that cannot rely on the file name.
//
//   - R3D clips are a sequence of big-endian length-prefixed boxes whose
//     first box carries a "RED1"/"RED2" tag at offset 4.
//   - BRAW clips are ISO BMFF movies, so they open with an "ftyp" box at
//     offset 4.
//
// Returns EngineUnknown if neither signature matches.
func DetectEngineFromHeader(data []byte) Engine {
	if len(data) < 8 {
		return EngineUnknown
	}
	switch string(data[4:8]) {
	case "RED1", "RED2":
		return EngineR3D
	case "ftyp":
		return EngineBRAW
	}
	return EngineUnknown
}
