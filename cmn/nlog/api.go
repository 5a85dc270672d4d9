// Package nlog - see nlog.go for the buffered writer this API fronts.
/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }

// Flush flushes buffered output; exit==true also syncs and closes the
// underlying file, for use just before os.Exit.
func Flush(exit ...bool) {
	mu.Lock()
	defer mu.Unlock()
	if bufOut != nil {
		bufOut.Flush()
	}
	if len(exit) > 0 && exit[0] && logFile != nil {
		logFile.Sync()
		logFile.Close()
	}
}
