package log

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFile appends to a file named after the current UTC day,
// e.g. 2026-10-17.txt, and switches to a new file at midnight.
// All methods are safe to call on nil receiver, they do nothing.
type DailyFile struct {
	Dir string

	mu   sync.Mutex
	day  string
	file *os.File
}

func NewDailyFile(dir string) *DailyFile {
	return &DailyFile{
		Dir: dir,
	}
}

func dayName(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Path returns path of today's file
func (w *DailyFile) Path() string {
	if w == nil {
		return ""
	}
	return filepath.Join(w.Dir, dayName(time.Now())+".txt")
}

// must be called with w.mu locked
func (w *DailyFile) open() error {
	today := dayName(time.Now())
	if w.file != nil && w.day == today {
		return nil
	}
	if err := w.closeFile(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(w.Dir, today+".txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.file = f
	w.day = today
	return nil
}

func (w *DailyFile) Write(d []byte) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.open(); err != nil {
		return err
	}
	_, err := w.file.Write(d)
	return err
}

func (w *DailyFile) WriteString(s string) error {
	return w.Write([]byte(s))
}

func (w *DailyFile) closeFile() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.day = ""
	return err
}

// Close syncs and closes the current file. Next Write opens it again
func (w *DailyFile) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		_ = w.file.Sync()
	}
	return w.closeFile()
}

func (w *DailyFile) Sync() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}
