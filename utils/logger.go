package utils

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging throughout the application. It is
// constructed once in main and handed to every component; there is no
// package-level logger.
type Logger struct {
	info    *log.Logger
	warn    *log.Logger
	err     *log.Logger
	debug   *log.Logger
	verbose bool
}

// NewLogger creates a Logger writing to stdout/stderr. Debug output is
// emitted only when verbose is true.
func NewLogger(verbose bool) *Logger {
	flags := 0
	return &Logger{
		info:    log.New(os.Stdout, "", flags),
		warn:    log.New(os.Stdout, "", flags),
		err:     log.New(os.Stderr, "", flags),
		debug:   log.New(os.Stdout, "", flags),
		verbose: verbose,
	}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(fmt.Sprintf("[%s] \033[32mINFO\033[0m  %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(fmt.Sprintf("[%s] \033[33mWARN\033[0m  %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(fmt.Sprintf("[%s] \033[31mERROR\033[0m %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.debug.Printf(fmt.Sprintf("[%s] \033[36mDEBUG\033[0m %s\n", l.timestamp(), format), args...)
}
