// Package nlog is the corpus pipeline's logger: buffered, timestamped,
// severity-leveled, with explicit flush and depth-aware caller
// annotation.
/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

var sevChar = [...]byte{'I', 'W', 'E'}

var (
	toStderr     bool
	alsoToStderr bool

	mu       sync.Mutex
	out      io.Writer = os.Stderr
	bufOut   *bufio.Writer
	logFile  *os.File
	logDir   string
	title    string
	initOnce sync.Once
)

// InitFlags registers -logtostderr/-alsologtostderr; parse before the
// first log call.
func InitFlags(flset *flag.FlagSet) {
	flset.BoolVar(&toStderr, "logtostderr", false, "log to standard error instead of files")
	flset.BoolVar(&alsoToStderr, "alsologtostderr", false, "log to standard error as well as files")
}

// SetLogDirRole points the logger at a destination directory; logDir=="" keeps
// logging on stderr only (the default for short-lived CLI runs).
func SetLogDirRole(dir, _role string) {
	mu.Lock()
	logDir = dir
	mu.Unlock()
}

func SetTitle(s string) { title = s }

func initFiles() {
	if toStderr || logDir == "" {
		return
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return
	}
	name := filepath.Join(logDir, fmt.Sprintf("corpusbuild.%d.log", os.Getpid()))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	logFile = f
	bufOut = bufio.NewWriterSize(f, 64*1024)
	out = bufOut
	if title != "" {
		fmt.Fprintln(out, title)
	}
}

func log(sev severity, depth int, format string, args ...any) {
	initOnce.Do(initFiles)

	line := format1(sev, depth+1, format, args...)

	mu.Lock()
	io.WriteString(out, line)
	if alsoToStderr && out != io.Writer(os.Stderr) {
		io.WriteString(os.Stderr, line)
	}
	mu.Unlock()
}

func format1(sev severity, depth int, format string, args ...any) string {
	var b strings.Builder
	b.WriteByte(sevChar[sev])
	b.WriteByte(' ')
	b.WriteString(time.Now().Format("15:04:05.000000"))
	b.WriteByte(' ')
	if _, fn, ln, ok := runtime.Caller(depth + 2); ok {
		if idx := strings.LastIndexByte(fn, filepath.Separator); idx >= 0 {
			fn = fn[idx+1:]
		}
		b.WriteString(fn)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(ln))
		b.WriteByte(' ')
	}
	if format == "" {
		fmt.Fprintln(&b, args...)
	} else {
		fmt.Fprintf(&b, format, args...)
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
