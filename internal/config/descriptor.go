// Package config parses the two external inputs the core never sees
// directly: CLI interface specifiers and the INI-like config file. Both
// resolve to a list of Descriptor values that the transport registry
// turns into runtime interfaces.
package config

// Descriptor is a parsed, not-yet-opened interface: a transport type
// plus its key/value options. Line is set for descriptors that came
// from a config file, for diagnostics; it is 0 for CLI specifiers.
type Descriptor struct {
	Kind    string
	Options map[string]string
	Line    int
}

// Global holds the [global]-section / command-line options that
// configure the engine itself rather than any one interface.
type Global struct {
	QSize      int
	Background bool
	LogTo      string
}

const DefaultQueueSize = 64

// Direction reads the common "direction" option shared by every
// transport type except seatalk (always "in"). It reports whether the
// option is present; the value itself is not validated here.
func (d Descriptor) Direction() (string, bool) {
	v, ok := d.Options["direction"]
	return v, ok
}
