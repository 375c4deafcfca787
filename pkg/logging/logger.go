package logging

import (
	"io"
	"log"
	"os"
)

var (
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger
)

// InitLogging initializes logging
func InitLogging() {
	InitLoggingWithOutput(os.Stdout, os.Stderr)
}

// InitLoggingWithOutput initializes logging with explicit writers
func InitLoggingWithOutput(out, errOut io.Writer) {
	InfoLogger = log.New(out, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLogger = log.New(out, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// Infof logs info level messages
func Infof(format string, v ...interface{}) {
	if InfoLogger != nil {
		InfoLogger.Printf(format, v...)
	}
}

// Warnf logs warning level messages
func Warnf(format string, v ...interface{}) {
	if WarnLogger != nil {
		WarnLogger.Printf(format, v...)
	}
}

// Errorf logs error level messages
func Errorf(format string, v ...interface{}) {
	if ErrorLogger != nil {
		ErrorLogger.Printf(format, v...)
	}
}
