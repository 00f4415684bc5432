package debug

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Diagnostics that should not reach the user end up here, most notably
// identify errors that are swallowed by the click handler.

var (
	mu sync.Mutex
	fh *os.File
)

func open() {
	var err error
	fh, err = os.OpenFile("brewmap.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("debug: error opening log file: %v", err)
	}
}

// Log writes a caller-annotated line to the debug log.
func Log(msg string) {
	write(2, msg)
}

// Logf is Log with fmt.Sprintf semantics.
func Logf(format string, v ...any) {
	write(2, fmt.Sprintf(format, v...))
}

func write(skip int, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if fh == nil {
		open()
	}
	if fh == nil {
		return
	}
	line := time.Now().Format("2006-01-02 15:04:05.000")
	if _, file, no, ok := runtime.Caller(skip); ok {
		line += fmt.Sprintf(" %s:%d", filepath.Base(file), no)
	}
	fh.WriteString(line + " " + msg + "\n")
}

// Close flushes and closes the debug log. Safe to call without a prior Log.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if fh == nil {
		return
	}
	fh.Sync()
	fh.Close()
	fh = nil
}
