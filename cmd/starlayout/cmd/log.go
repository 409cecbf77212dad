package cmd

import (
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
)

// logger is shared by every command. It discards everything until
// setupLogging runs.
var logger = logr.Discard()

// setupLogging routes coordinator logs to stderr at the given verbosity and
// makes the framework error handler verbose when logging is on.
func setupLogging(verbosity int) {
	if verbosity <= 0 {
		logger = logr.Discard()
		return
	}
	stdr.SetVerbosity(verbosity)
	logger = stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)).WithName("starlayout")
	layouterrors.SetHandler(&layouterrors.LogHandler{Verbose: true, Out: os.Stderr})
}
