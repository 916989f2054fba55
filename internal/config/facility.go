package config

import (
	"log/syslog"

	"github.com/gravitational/trace"
)

// facilities enumerates the exact syslog facility names kplex accepts,
// resolving the source's string2facility (whose "local0..local7"
// arithmetic does not correspond to its stated contract — spec.md §9).
var facilities = map[string]syslog.Priority{
	"kern":     syslog.LOG_KERN,
	"user":     syslog.LOG_USER,
	"mail":     syslog.LOG_MAIL,
	"daemon":   syslog.LOG_DAEMON,
	"auth":     syslog.LOG_AUTH,
	"syslog":   syslog.LOG_SYSLOG,
	"lpr":      syslog.LOG_LPR,
	"news":     syslog.LOG_NEWS,
	"cron":     syslog.LOG_CRON,
	"authpriv": syslog.LOG_AUTHPRIV,
	"ftp":      syslog.LOG_FTP,
	"local0":   syslog.LOG_LOCAL0,
	"local1":   syslog.LOG_LOCAL1,
	"local2":   syslog.LOG_LOCAL2,
	"local3":   syslog.LOG_LOCAL3,
	"local4":   syslog.LOG_LOCAL4,
	"local5":   syslog.LOG_LOCAL5,
	"local6":   syslog.LOG_LOCAL6,
	"local7":   syslog.LOG_LOCAL7,
}

// Facility resolves a facility name to its syslog priority, or returns a
// config-semantic error for anything not in the list above.
func Facility(name string) (syslog.Priority, error) {
	f, ok := facilities[name]
	if !ok {
		return 0, trace.BadParameter("unknown log facility %q", name)
	}
	return f, nil
}
