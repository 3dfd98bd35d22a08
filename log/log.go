// Package log is a small logging library.
//
// Messages go to stdout, errors to stderr and, after Init with a
// directory, to daily files in log/ and errors/ sub-directories. Events are named records
// with key/value pairs, written to events/ and passed to Config.OnEvent.
//
// All functions are safe to call before Init.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/toon-format/toon-go"
)

var (
	mu        sync.Mutex
	logFile   *DailyFile
	errorFile *DailyFile
	eventFile *DailyFile
	onLog     func(s string)
	onError   func(s string)
	onEvent   func(name string, m map[string]any)

	// tests redirect these
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	// if true, Verbosef() will log messages
	Verbose bool
)

type Config struct {
	// directory for log files, if empty we only log to stdout
	Dir string
	// called for every Logf() call, e.g. to send logs to logtastic
	OnLog func(s string)
	// called for every Errorf() call with message and callstack
	OnError func(s string)
	// called for every Event() call
	OnEvent func(name string, m map[string]any)
}

func Init(config *Config) {
	Close()
	mu.Lock()
	defer mu.Unlock()
	onLog = config.OnLog
	onError = config.OnError
	onEvent = config.OnEvent
	if config.Dir == "" {
		return
	}
	logFile = NewDailyFile(filepath.Join(config.Dir, "log"))
	errorFile = NewDailyFile(filepath.Join(config.Dir, "errors"))
	// files are only created on first write
	eventFile = NewDailyFile(filepath.Join(config.Dir, "events"))
}

// EventsPath returns path of today's events file, "" if not logging to files
func EventsPath() string {
	mu.Lock()
	defer mu.Unlock()
	return eventFile.Path()
}

// Close closes log files and forgets hooks set by Init
func Close() {
	mu.Lock()
	defer mu.Unlock()
	for _, f := range []**DailyFile{&logFile, &errorFile, &eventFile} {
		_ = (*f).Close()
		*f = nil
	}
	onLog = nil
	onError = nil
	onEvent = nil
}

func sprintf(s string, args []any) string {
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

func Logf(s string, args ...any) {
	s = sprintf(s, args)
	fmt.Fprint(stdout, s)
	mu.Lock()
	f, hook := logFile, onLog
	mu.Unlock()
	_ = f.WriteString(s)
	if hook != nil {
		hook(s)
	}
}

func Verbosef(s string, args ...any) {
	if Verbose {
		Logf(s, args...)
	}
}

// Callstack returns file:line of callers, starting skip frames above the caller
func Callstack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var lines []string
	for {
		frame, more := frames.Next()
		lines = append(lines, frame.File+":"+strconv.Itoa(frame.Line))
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// Errorf logs an error message followed by the callstack
func Errorf(s string, args ...any) {
	s = sprintf(s, args)
	s = fmt.Sprintf("%s\n%s\n", strings.TrimSuffix(s, "\n"), Callstack(1))
	fmt.Fprint(stderr, s)
	mu.Lock()
	ef, lf, hook := errorFile, logFile, onError
	mu.Unlock()
	_ = ef.WriteString(s)
	_ = lf.WriteString(s)
	if hook != nil {
		hook(s)
	}
}

// IfErrf logs if err is not nil and returns true
// IfErrf(err) logs err.Error()
// IfErrf(err, "Persist failed with '%s'", err) logs formatted message
func IfErrf(err error, a ...any) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if len(a) > 0 {
		s = sprintf(fmt.Sprint(a[0]), a[1:])
	}
	Errorf("%s", s)
	return true
}

// Event records an event with key/value pairs e.g.
// Event("tabdb.append", "path", path, "added", n)
// Keys are strings. Values are encoded in toon format.
func Event(name string, kv ...any) {
	m := map[string]any{}
	for i := 0; i < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		if i+1 == len(kv) {
			m[k] = "!missing"
			break
		}
		m[k] = kv[i+1]
	}
	mu.Lock()
	f, hook := eventFile, onEvent
	mu.Unlock()
	if hook != nil {
		hook(name, m)
	}
	if f == nil {
		return
	}
	var d []byte
	if len(m) > 0 {
		var err error
		if d, err = toon.Marshal(m); err != nil {
			d = []byte(fmt.Sprintf("error: %s", err))
		}
	}
	_ = f.Write(marshalEventLine(name, time.Now().UTC(), d))
}

// EventWithDuration is Event with "durmicro" key set to dur in microseconds
func EventWithDuration(name string, dur time.Duration, kv ...any) {
	kv = append(kv, "durmicro", dur.Microseconds())
	Event(name, kv...)
}
