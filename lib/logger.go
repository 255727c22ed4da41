package lib

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/rs/zerolog"
	"github.com/ziflex/lecho/v3"
)

// Logger writes to stdout, or to logFilePath when set. A path without extension gets a
// date suffix so every day starts a new file.
func Logger(logFilePath string) *lecho.Logger {
	var target io.Writer = os.Stdout

	// check if a log file config is set
	if logFilePath != "" {
		path := logFilePath
		if filepath.Ext(logFilePath) == "" {
			path = logFilePath + time.Now().Format("-2006-01-02") + ".log"
		}
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			panic(err)
		}
		target = file
	}

	zlog := zerolog.New(target).With().Timestamp().Logger()
	return lecho.From(zlog, lecho.WithLevel(log.INFO))
}
