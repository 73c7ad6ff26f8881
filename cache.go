package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/gofrs/flock"
)

const (
	resultFile = "result"
	hashFile   = ".hash"
	lockFile   = ".lock"

	// keep at least this many results, and only remove older ones after a week
	keepResults  = 64
	minResultAge = 7 * 24 * time.Hour
)

// defaultCacheDir reads CVXCACHE, falling back to the per-user cache
// directory of the platform.
func defaultCacheDir() string {
	if env := os.Getenv("CVXCACHE"); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "cvxsym")
		}
		return filepath.Join(homeDir, "AppData", "Local", "cvxsym")
	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", "cvxsym")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "cvxsym")
		}
		return filepath.Join(homeDir, ".cache", "cvxsym")
	}
}

// isHashDir returns true if name is an 8-char hex string (matches shortHash format).
func isHashDir(name string) bool {
	if len(name) != 8 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// cacheKey hashes everything that affects a compiled result. It returns
// the short hash used as directory name and the full hash used to detect
// collisions.
func cacheKey(parts ...[]byte) (shortHash, fullHash string) {
	h := sha256.New()
	h.Write([]byte(Version))
	for _, p := range parts {
		// length prefix keeps ("ab", "c") and ("a", "bc") apart
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	fullHash = hex.EncodeToString(h.Sum(nil))
	return fullHash[:8], fullHash
}

type resultCache struct {
	dir    string
	logger *slog.Logger
}

// getOrBuild returns the cached result for the key of parts, or runs build
// and stores its output. A file lock makes concurrent processes see either
// a complete result or build it themselves.
func (rc *resultCache) getOrBuild(build func() ([]byte, error), parts ...[]byte) (data []byte, hit bool, err error) {
	if err := os.MkdirAll(rc.dir, 0755); err != nil {
		return nil, false, fmt.Errorf("create cache dir: %w", err)
	}

	lock := flock.New(filepath.Join(rc.dir, lockFile))
	if err := lock.Lock(); err != nil {
		return nil, false, fmt.Errorf("acquire cache lock: %w", err)
	}
	defer lock.Unlock()

	shortHash, fullHash := cacheKey(parts...)
	entryDir := filepath.Join(rc.dir, shortHash)
	marker := filepath.Join(entryDir, hashFile)

	if stored, err := os.ReadFile(marker); err == nil {
		if string(stored) == fullHash {
			if data, err := os.ReadFile(filepath.Join(entryDir, resultFile)); err == nil {
				rc.logger.Debug("using cached result", "dir", entryDir)
				return data, true, nil
			}
		}
		// Hash collision or corrupted entry - rebuild
		rc.logger.Info("cache entry mismatch, rebuilding", "dir", entryDir)
		if err := os.RemoveAll(entryDir); err != nil {
			return nil, false, fmt.Errorf("remove stale cache entry: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("read cache marker: %w", err)
	}

	rc.cleanup(keepResults, minResultAge)

	data, err = build()
	if err != nil {
		return nil, false, err
	}
	if err := os.MkdirAll(entryDir, 0755); err != nil {
		return nil, false, fmt.Errorf("create cache entry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(entryDir, resultFile), data, 0644); err != nil {
		return nil, false, fmt.Errorf("write cached result: %w", err)
	}
	// Store full hash last (acts as completion marker)
	if err := os.WriteFile(marker, []byte(fullHash), 0644); err != nil {
		return nil, false, fmt.Errorf("write hash file: %w", err)
	}
	return data, false, nil
}

// cleanup removes old result directories. Only deletes directories older
// than minAge AND keeps at least 'keep' most recent.
func (rc *resultCache) cleanup(keep int, minAge time.Duration) {
	entries, err := os.ReadDir(rc.dir)
	if err != nil || len(entries) <= keep {
		return
	}

	type dirInfo struct {
		name  string
		mtime time.Time
	}
	var dirs []dirInfo
	for _, e := range entries {
		if e.IsDir() && isHashDir(e.Name()) {
			if info, err := e.Info(); err == nil {
				dirs = append(dirs, dirInfo{e.Name(), info.ModTime()})
			}
		}
	}
	if len(dirs) <= keep {
		return
	}

	// oldest first
	cutoff := time.Now().Add(-minAge)
	slices.SortFunc(dirs, func(a, b dirInfo) int { return a.mtime.Compare(b.mtime) })
	for _, d := range dirs[:len(dirs)-keep] {
		if d.mtime.Before(cutoff) {
			path := filepath.Join(rc.dir, d.name)
			if err := os.RemoveAll(path); err != nil {
				rc.logger.Warn("failed to remove old cache entry", "path", path, "err", err)
			}
		}
	}
}
