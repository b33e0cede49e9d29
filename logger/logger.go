// Package logger builds the prefixed logrus loggers every component receives.
package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/beka-birhanu/vinom-maze/config"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out whose lines start with a coloured
// [prefix] tag. LOG_LEVEL selects the level (info by default) and
// LOG_FORMAT=json switches to JSON lines carrying the prefix as "component".
func New(prefix, color string, out io.Writer) (*logrus.Entry, error) {
	if prefix == "" {
		return nil, errors.New("logger prefix is required")
	}
	if out == nil {
		return nil, errors.New("logger output is required")
	}

	log := logrus.New()
	log.SetOutput(out)

	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
		return log.WithField("component", prefix), nil
	}

	log.SetFormatter(&prefixFormatter{prefix: prefix, color: color})
	return logrus.NewEntry(log), nil
}

// prefixFormatter writes "<color>[PREFIX]<reset> [LEVEL] message key=value".
type prefixFormatter struct {
	prefix string
	color  string
}

// Format implements logrus.Formatter.
func (f *prefixFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	levelColor := config.LogInfoColor
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		levelColor = config.LogErrorColor
	case logrus.WarnLevel:
		levelColor = config.LogWarnColor
	}

	fmt.Fprintf(&b, "%s %s[%s]%s %s[%s]%s %s",
		entry.Time.Format("2006-01-02 15:04:05"),
		f.color, f.prefix, config.ColorReset,
		levelColor, strings.ToUpper(entry.Level.String()), config.LogColorReset,
		entry.Message,
	)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}
