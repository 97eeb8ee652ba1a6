//go:build darwin || linux

// Shared utilities for the purego-based engine bindings.

package rawbridge

import (
	"os"
	"path/filepath"
	"runtime"
	"unsafe"
)

// sharedLibName appends the platform shared-library suffix.
func sharedLibName(stem string) string {
	if runtime.GOOS == "darwin" {
		return stem + ".dylib"
	}
	return stem + ".so"
}

// engineLibPaths builds the candidate paths for an engine shim library.
//
// Search order:
//   - engine-specific environment variable (full path to the library)
//   - RAWBRIDGE_SDK_LIB_PATH environment variable (directory)
//   - next to the running executable, then ../lib and ../sdk beside it
//   - conventional relative fallback, then system library paths
func engineLibPaths(envVar, stem string) []string {
	var paths []string

	libName := sharedLibName(stem)

	if envPath := os.Getenv(envVar); envPath != "" {
		paths = append(paths, envPath)
	}
	if envPath := os.Getenv("RAWBRIDGE_SDK_LIB_PATH"); envPath != "" {
		paths = append(paths, filepath.Join(envPath, libName))
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, libName),
			filepath.Join(exeDir, "..", "lib", libName),
			filepath.Join(exeDir, "..", "sdk", libName),
		)
	}

	paths = append(paths,
		filepath.Join("sdk", libName),
		libName,
		filepath.Join("/usr/local/lib", libName),
		filepath.Join("/usr/lib", libName),
	)

	return paths
}

// goStringFromPtr converts a C string pointer to a Go string.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	var length int
	for {
		if *(*byte)(unsafe.Pointer(uintptr(p) + uintptr(length))) == 0 {
			break
		}
		length++
		if length > 1024 { // Safety limit
			break
		}
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}
