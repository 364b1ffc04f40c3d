// Package log wraps the standard logger with level filtering.
//
// Messages carry their level as a bracketed prefix, e.g.
// log.Printf("[warn] unparsable phone %q", v). Lines below the minimum
// level are dropped, all others get a timestamp and the elapsed run time.
package log

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"time"
)

type Logger interface {
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

var DefaultLogger *log.Logger
var defaultFilter *levelFilter

type Level string

const (
	LDebug    = Level("debug")
	LProgress = Level("progress")
	LStep     = Level("step")
	LInfo     = Level("info")
	LWarn     = Level("warn")
	LError    = Level("error")
	LFatal    = Level("fatal")
)

var levels = []Level{LDebug, LProgress, LStep, LInfo, LWarn, LError, LFatal}

func init() {
	defaultFilter = newLevelFilter(os.Stderr, LProgress)
	DefaultLogger = log.New(defaultFilter, "", 0)
}

type levelFilter struct {
	mu        sync.Mutex
	start     time.Time
	writer    io.Writer
	minLevel  Level
	badLevels map[Level]struct{}
}

func newLevelFilter(w io.Writer, min Level) *levelFilter {
	f := &levelFilter{start: time.Now(), writer: w}
	f.setMinLevel(min)
	return f
}

func (f *levelFilter) setMinLevel(lvl Level) {
	badLevels := make(map[Level]struct{})
	for _, level := range levels {
		if level == lvl {
			break
		}
		badLevels[level] = struct{}{}
	}
	f.mu.Lock()
	f.minLevel = lvl
	f.badLevels = badLevels
	f.mu.Unlock()
}

// levelOf returns the bracketed level at the start of line, or "" for
// lines without one. Unleveled lines are never filtered.
func levelOf(line []byte) Level {
	if len(line) == 0 || line[0] != '[' {
		return ""
	}
	end := bytes.IndexByte(line, ']')
	if end < 0 {
		return ""
	}
	return Level(line[1:end])
}

func (f *levelFilter) Write(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, bad := f.badLevels[levelOf(p)]; bad {
		return len(p), nil
	}
	// The Go log package always guarantees that we only
	// get a single line.
	b := bytes.Buffer{}
	now := time.Now()
	d := now.Sub(f.start)
	fmt.Fprintf(&b, "[%s] %d:%02d:%02d ",
		now.Format(time.RFC3339),
		int(d.Hours()),
		int(math.Mod(d.Minutes(), 60)),
		int(math.Mod(d.Seconds(), 60)),
	)
	b.Write(p)
	if _, err := f.writer.Write(b.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetMinLevel drops all messages below lvl.
func SetMinLevel(lvl Level) {
	defaultFilter.setMinLevel(lvl)
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	defaultFilter.mu.Lock()
	defaultFilter.writer = w
	defaultFilter.mu.Unlock()
}

// Configure sets the minimum level from the common -quiet/-debug flags.
func Configure(quiet, debug bool) {
	switch {
	case debug:
		SetMinLevel(LDebug)
	case quiet:
		SetMinLevel(LWarn)
	default:
		SetMinLevel(LProgress)
	}
}

func Println(v ...interface{}) {
	DefaultLogger.Println(v...)
}

func Printf(format string, v ...interface{}) {
	DefaultLogger.Printf(format, v...)
}

func Fatal(v ...interface{}) {
	DefaultLogger.Fatal(v...)
}

func Fatalf(format string, v ...interface{}) {
	DefaultLogger.Fatalf(format, v...)
}

// Step logs the start of name and returns a func that logs its duration.
func Step(name string) func() {
	start := time.Now()
	Println("[step] Starting:", name)
	return func() {
		Printf("[step] Finished: %s in %s", name, time.Since(start))
	}
}
