package commands

import (
	"os"

	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/sirupsen/logrus"
)

// cliLogger adapts a logrus logger to the engine.Logger interface so
// that --verbose surfaces the client's HTTP exchange logging.
type cliLogger struct {
	logger *logrus.Logger
}

func newCLILogger() engine.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	return &cliLogger{logger: logger}
}

func (l *cliLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *cliLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *cliLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *cliLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Error(msg)
}
