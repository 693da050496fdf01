// Package common provides the centralized logging infrastructure for the
// ProvInspector provenance service. It implements log output routing that
// directs error messages to stderr while sending other log levels to stdout,
// enabling proper stream separation for containerized and scripted
// environments.
//
// The logging system is built on logrus for structured logging with custom
// output handling. All packages of the service log through the global Logger
// instance to ensure uniform output handling and formatting.
package common

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes formatted log output to stdout or stderr based on the
// entry's level. Error-level messages (containing "level=error" in text format
// or "level":"error" in JSON format) go to stderr, everything else to stdout.
// Docker and Kubernetes capture the two streams independently, which lets log
// aggregators treat errors with higher priority.
type OutputSplitter struct{}

// Write implements io.Writer for the OutputSplitter. It examines the formatted
// entry for the error level marker and selects the output stream accordingly.
func (splitter *OutputSplitter) Write(p []byte) (n int, err error) {
	if bytes.Contains(p, []byte("level=error")) || bytes.Contains(p, []byte(`"level":"error"`)) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the global logger instance for the ProvInspector service. It is
// pre-configured with the OutputSplitter for stream separation and serves as
// the central logging facility for the translator, the storage adapters, the
// CLI, and the HTTP API.
//
// Configuration examples:
//
//	// Development environment (human-readable)
//	common.Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
//	common.Logger.SetLevel(logrus.DebugLevel)
//
//	// Production environment (machine-readable)
//	common.Logger.SetFormatter(&logrus.JSONFormatter{})
//	common.Logger.SetLevel(logrus.InfoLevel)
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
