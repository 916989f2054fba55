// Package logging sets up the process-wide logger: stderr when
// running attached, a syslog hook at the configured facility when
// daemonized, matching the source's openlog()/syslog() split.
package logging

import (
	"log/syslog"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// New builds a logger. background routes every entry to syslog at the
// given facility instead of stderr, matching the source's openlog()
// call under -b/mode=background.
func New(background bool, facility syslog.Priority) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if !background {
		return log, nil
	}

	hook, err := newSyslogHook(facility)
	if err != nil {
		return nil, trace.Wrap(err, "connecting to syslog")
	}
	log.AddHook(hook)
	log.SetOutput(discard{})
	return log, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// syslogHook adapts logrus to log/syslog. No module in the retrieved
// corpus offers a logrus syslog hook, so this one concern is built on
// the standard library rather than grounded in an example.
type syslogHook struct {
	w *syslog.Writer
}

func newSyslogHook(facility syslog.Priority) (*syslogHook, error) {
	w, err := syslog.New(facility|syslog.LOG_INFO, "kplex")
	if err != nil {
		return nil, err
	}
	return &syslogHook{w: w}, nil
}

func (h *syslogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *syslogHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return h.w.Crit(line)
	case logrus.ErrorLevel:
		return h.w.Err(line)
	case logrus.WarnLevel:
		return h.w.Warning(line)
	case logrus.InfoLevel:
		return h.w.Info(line)
	default:
		return h.w.Debug(line)
	}
}
