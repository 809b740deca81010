package renderer

import (
	"log"
	"os"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// DefaultLogger writes timestamped lines to stderr, leaving stdout free for image data
type DefaultLogger struct {
	logger *log.Logger
}

// NewDefaultLogger creates a logger writing to stderr
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{logger: log.New(os.Stderr, "", log.LstdFlags)}
}

// Printf implements core.Logger
func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.logger.Printf(format, args...)
}
