package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// backupStamp is the timestamp embedded in rotated file names. It sorts in
// chronological order.
const backupStamp = "20060102-150405.000"

// logName splits the active log path into the pieces rotated names are
// built from: dir/stem-<stamp>ext[.gz].
type logName struct {
	dir  string
	stem string
	ext  string
}

func splitLogName(path string) logName {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return logName{
		dir:  filepath.Dir(path),
		stem: strings.TrimSuffix(base, ext),
		ext:  ext,
	}
}

func (n logName) backup(at time.Time) string {
	return filepath.Join(n.dir, n.stem+"-"+at.Format(backupStamp)+n.ext)
}

// isBackup reports whether a directory entry name is a rotated copy.
func (n logName) isBackup(name string) bool {
	name = strings.TrimSuffix(name, ".gz")
	return strings.HasPrefix(name, n.stem+"-") && strings.HasSuffix(name, n.ext)
}

// FileRotator is an io.Writer over the configured log file. The file is
// rotated when a write would exceed MaxSize megabytes or when the local
// calendar day changes; at most MaxBackups rotated files younger than MaxAge
// days are kept.
type FileRotator struct {
	path       string
	name       logName
	maxBytes   int64
	maxBackups int
	maxAge     int
	compress   bool

	mu       sync.Mutex
	file     *os.File
	size     int64
	lastTime time.Time

	// now is swapped in tests.
	now func() time.Time
}

// NewFileRotator opens cfg.FilePath for appending, creating its directory.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	r := &FileRotator{
		path:       cfg.FilePath,
		name:       splitLogName(cfg.FilePath),
		maxBytes:   cfg.MaxSize << 20,
		maxBackups: cfg.MaxBackups,
		maxAge:     cfg.MaxAge,
		compress:   cfg.Compress,
		now:        time.Now,
	}

	if err := os.MkdirAll(r.name.dir, 0750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	r.file, r.size, r.lastTime = f, info.Size(), r.now()
	return nil
}

// Write implements io.Writer.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	now := r.now()
	if r.exceeds(int64(len(p))) || !sameDay(r.lastTime, now) {
		if err := r.rotate(now); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *FileRotator) exceeds(pending int64) bool {
	return r.maxBytes > 0 && r.size+pending > r.maxBytes
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// rotate moves the active file aside under a timestamped name and reopens
// a fresh one. Compression and pruning are best effort.
func (r *FileRotator) rotate(now time.Time) error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		if err != nil {
			return fmt.Errorf("close current log: %w", err)
		}
	}

	backup := r.name.backup(now)
	if err := os.Rename(r.path, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}
	if err := r.open(); err != nil {
		return err
	}

	if r.compress {
		_ = gzipFile(backup)
	}
	r.prune(now)
	return nil
}

// gzipFile replaces path with path.gz. On failure the original is kept and
// the partial archive removed.
func gzipFile(path string) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path + ".gz")
		}
	}()

	gz := gzip.NewWriter(dst)
	gz.Name = filepath.Base(path)
	if _, err = io.Copy(gz, src); err != nil {
		gz.Close()
		return err
	}
	if err = gz.Close(); err != nil {
		return err
	}

	src.Close()
	return os.Remove(path)
}

// backups lists rotated files, oldest first.
func (r *FileRotator) backups() ([]string, error) {
	entries, err := os.ReadDir(r.name.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && r.name.isBackup(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(r.name.dir, n)
	}
	return paths, nil
}

// prune enforces MaxBackups, then MaxAge, on the rotated files.
func (r *FileRotator) prune(now time.Time) {
	paths, err := r.backups()
	if err != nil {
		return
	}

	if r.maxBackups > 0 && len(paths) > r.maxBackups {
		drop := len(paths) - r.maxBackups
		for _, p := range paths[:drop] {
			os.Remove(p)
		}
		paths = paths[drop:]
	}

	if r.maxAge <= 0 {
		return
	}
	cutoff := now.AddDate(0, 0, -r.maxAge)
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.ModTime().Before(cutoff) {
			os.Remove(p)
		}
	}
}

// Close closes the active file.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Sync flushes the active file to disk.
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// GetLogFiles returns the active file followed by the rotated ones, oldest
// first.
func (r *FileRotator) GetLogFiles() ([]string, error) {
	paths, err := r.backups()
	return append([]string{r.path}, paths...), err
}
