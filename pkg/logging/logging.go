// Package logging builds the installer's logger. The terminal belongs to the
// front-end, so logs go to a rotated file and, when available, the systemd
// journal.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 5
	maxBackups = 3
)

type Options struct {
	// File is the log path. "-" logs to stderr, empty discards file output.
	File    string
	Verbose bool
	// Journal mirrors warnings and errors to journald when it is reachable.
	Journal bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a configured logger and the closer for its output.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	log.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	var closer io.Closer = nopCloser{}
	switch opts.File {
	case "":
		log.SetOutput(io.Discard)
	case "-":
		log.SetOutput(os.Stderr)
	default:
		if strings.HasSuffix(opts.File, string(os.PathSeparator)) {
			return nil, nil, fmt.Errorf("log file %q is a directory", opts.File)
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
		log.SetOutput(rotator)
		closer = rotator
	}

	if opts.Journal && journal.Enabled() {
		log.AddHook(NewJournalHook("nxs"))
	}
	return log, closer, nil
}

// JournalHook forwards entries at warning level and above to journald.
type JournalHook struct {
	identifier string
	send       func(message string, priority journal.Priority, vars map[string]string) error
}

func NewJournalHook(identifier string) *JournalHook {
	return &JournalHook{identifier: identifier, send: journal.Send}
}

func (h *JournalHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *JournalHook) Fire(entry *logrus.Entry) error {
	vars := map[string]string{"SYSLOG_IDENTIFIER": h.identifier}
	for k, v := range entry.Data {
		vars[journalField(k)] = fmt.Sprint(v)
	}
	return h.send(entry.Message, priority(entry.Level), vars)
}

func priority(level logrus.Level) journal.Priority {
	switch level {
	case logrus.PanicLevel:
		return journal.PriEmerg
	case logrus.FatalLevel:
		return journal.PriCrit
	case logrus.ErrorLevel:
		return journal.PriErr
	case logrus.WarnLevel:
		return journal.PriWarning
	case logrus.InfoLevel:
		return journal.PriInfo
	}
	return journal.PriDebug
}

// journalField maps a logrus key to a valid journal field name, e.g.
// "phase" to "NXS_PHASE".
func journalField(key string) string {
	var b strings.Builder
	b.WriteString("NXS_")
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
