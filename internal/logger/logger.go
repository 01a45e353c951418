// Package logger wires the standard log package to stdout plus a
// size-rotated log file.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// rotatingFile is an io.Writer that switches to a fresh file once the current
// one grows past maxBytes, keeping up to maxBackups rotated copies
// (name.1 is the most recent).
type rotatingFile struct {
	name       string
	maxBytes   int64
	maxBackups int

	mu   sync.Mutex
	file *os.File
	size int64
}

// Setup points the standard logger at stdout and a rotating file.
// On any file error it falls back to stdout only and keeps going; logging
// must never take the tracker down.
func Setup(filename string, maxSizeMB int64, maxBackups int) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	r := &rotatingFile{
		name:       filename,
		maxBytes:   maxSizeMB * 1024 * 1024,
		maxBackups: maxBackups,
	}
	if err := r.open(); err != nil {
		log.Printf("Failed to open log file %s, using stdout only: %v", filename, err)
		return
	}

	log.SetOutput(io.MultiWriter(os.Stdout, r))
}

// open attaches to the existing log file in append mode, or creates it.
func (r *rotatingFile) open() error {
	f, err := os.OpenFile(r.name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	if r.size+int64(len(p)) > r.maxBytes {
		if err := r.rotate(); err != nil {
			// Better to keep appending to an oversized file than to drop lines.
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate shifts each backup up one slot (name.1 -> name.2, ...), moves the
// live file to name.1 and opens a fresh one.
func (r *rotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	for i := r.maxBackups - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", r.name, i)
		if _, err := os.Stat(src); err == nil {
			os.Rename(src, fmt.Sprintf("%s.%d", r.name, i+1))
		}
	}
	if _, err := os.Stat(r.name); err == nil {
		os.Rename(r.name, r.name+".1")
	}

	if err := os.Remove(r.name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return r.open()
}
