// Package log hands out the logrus loggers used on configuration paths of
// the engine. Update paths never log per sample.
package log

import (
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// DebugEnv is the environment variable that switches on debug output.
const DebugEnv = "DSPGRAPH_DEBUG"

var (
	once sync.Once
	root *logrus.Logger
)

func rootLogger() *logrus.Logger {
	once.Do(func() {
		root = logrus.New()
		root.SetLevel(levelFromEnv())
	})
	return root
}

func levelFromEnv() logrus.Level {
	debug, err := strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil || !debug {
		return logrus.InfoLevel
	}
	return logrus.DebugLevel
}

// New returns a logger tagged with component.
func New(component string) *logrus.Entry {
	return rootLogger().WithField("component", component)
}

// SetDebug overrides the level chosen from the environment.
func SetDebug(debug bool) {
	if debug {
		rootLogger().SetLevel(logrus.DebugLevel)
		return
	}
	rootLogger().SetLevel(logrus.InfoLevel)
}

// SetOutput redirects every logger handed out by New.
func SetOutput(w io.Writer) {
	rootLogger().SetOutput(w)
}
