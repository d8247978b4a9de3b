package envfile

import (
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFilename is the conventional file name searched for by Locate.
const DefaultFilename = ".env"

// Locate searches for a file named .env starting at startDir and walking up
// through parent directories until the filesystem root. An empty startDir
// means the current working directory. The second return value reports
// whether a file was found; a miss is a normal negative result, not an
// error.
func Locate(startDir string) (string, bool) {
	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		startDir = cwd
	}
	return locate(startDir, os.Stat)
}

// locate performs the upward walk with an injectable stat capability so the
// search can be tested without touching the real filesystem.
func locate(dir string, stat func(string) (fs.FileInfo, error)) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		candidate := filepath.Join(dir, DefaultFilename)
		if info, err := stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Apply merges entries into the process environment. With override false an
// already-present variable is left alone, so real environment variables win
// over file-supplied defaults. It returns the number of variables actually
// written. This is the only function in the package that mutates process
// state.
func Apply(entries []Entry, override bool) int {
	written := 0
	for _, e := range entries {
		if !override {
			if _, exists := os.LookupEnv(e.Key); exists {
				continue
			}
		}
		if err := os.Setenv(e.Key, e.Value); err != nil {
			continue
		}
		written++
	}
	return written
}

// Load parses the file at path and applies its entries to the process
// environment without overriding existing variables. An empty path triggers
// an upward search from the current working directory. A missing file is a
// silent no-op returning false, so Load is safe to call in environments
// where configuration arrives through real environment variables instead.
func Load(path string) (bool, error) {
	return load(path, false)
}

// Overload is Load with override semantics: file values replace existing
// environment variables.
func Overload(path string) (bool, error) {
	return load(path, true)
}

func load(path string, override bool) (bool, error) {
	if path == "" {
		found, ok := Locate("")
		if !ok {
			return false, nil
		}
		path = found
	}
	entries, err := ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	Apply(entries, override)
	return true, nil
}

// Values parses the file at path and returns its key/value pairs without
// touching the process environment. An empty path triggers an upward search
// from the current working directory. A missing file yields an empty map.
func Values(path string) (map[string]string, error) {
	vals := make(map[string]string)
	if path == "" {
		found, ok := Locate("")
		if !ok {
			return vals, nil
		}
		path = found
	}
	entries, err := ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return vals, nil
		}
		return nil, err
	}
	for _, e := range entries {
		vals[e.Key] = e.Value
	}
	return vals, nil
}
