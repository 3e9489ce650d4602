package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logrus *logrus.Logger

// Init sets up the process logger with file rotation. A latency sensitive
// loop should not block on stdout, so the console copy is best effort only.
func Init(logfile string) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{})

	rotated := &lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    200,
		MaxBackups: 50,
		MaxAge:     14,
		Compress:   true,
	}
	logger.Out = io.MultiWriter(rotated, os.Stdout)

	logger.SetLevel(logrus.InfoLevel)
	Logrus = logger
}

func SetLogLevel(runMode string) {
	modeLevel := logrus.InfoLevel

	switch runMode {
	case "debug":
		modeLevel = logrus.DebugLevel
	case "fatal":
		modeLevel = logrus.FatalLevel
	case "error":
		modeLevel = logrus.ErrorLevel
	case "warn":
		modeLevel = logrus.WarnLevel
	default:
		modeLevel = logrus.InfoLevel
	}

	Logrus.SetLevel(modeLevel)
}
