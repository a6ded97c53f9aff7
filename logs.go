package vkcore

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

var exit = os.Exit

//Logs groups the leveled loggers shared by everything built on a Core
type Logs struct {
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	fatal *log.Logger
	files []*os.File
}

// NewLogs writes every level to w.
func NewLogs(w io.Writer) *Logs {
	return &Logs{
		Info:  log.New(w, "INFO: ", logFlags),
		Warn:  log.New(w, "WARNING: ", logFlags),
		Error: log.New(w, "ERROR: ", logFlags),
		fatal: log.New(w, "FATAL: ", logFlags),
	}
}

// NewFileLogs appends each level to its own file in dir: info_log.txt,
// warn_log.txt, error_log.txt and fatal_log.txt.
func NewFileLogs(dir string) (*Logs, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}
	logs := &Logs{}
	open := func(name, prefix string) *log.Logger {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil
		}
		logs.files = append(logs.files, f)
		return log.New(f, prefix, logFlags)
	}
	logs.Info = open("info_log.txt", "INFO: ")
	logs.Warn = open("warn_log.txt", "WARNING: ")
	logs.Error = open("error_log.txt", "ERROR: ")
	logs.fatal = open("fatal_log.txt", "FATAL: ")
	if logs.Info == nil || logs.Warn == nil || logs.Error == nil || logs.fatal == nil {
		logs.Close()
		return nil, errors.Errorf("open log files in %s", dir)
	}
	return logs, nil
}

// Close closes the files opened by NewFileLogs.
func (l *Logs) Close() error {
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.files = nil
	return first
}

//Fatal logs a non nil err, runs the finalizers in order and exits the process
func (l *Logs) Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	l.fatal.Output(2, fmt.Sprintf("%+v", err))
	for _, fn := range finalizers {
		fn()
	}
	exit(1)
}

// failure logs and builds a core error. Fatal and contract failures go to the
// error log, recoverable ones to the warning log.
func (l *Logs) failure(kind Kind, op, path string, err error) error {
	e := &Error{Kind: kind, Op: op, Path: path, Err: err}
	out := l.Error
	if kind == KindRecoverable {
		out = l.Warn
	}
	out.Output(3, fmt.Sprintf("%s: %v", kind, e))
	return e
}
