package config

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravitational/trace"
	"gopkg.in/ini.v1"
)

// DiscoverPath resolves the config file location in the order kplex
// uses: an explicit override, then $KPLEXCONF, then $HOME/.kplex.conf,
// then /etc/kplex.conf. Returns "" if none exist.
func DiscoverPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("KPLEXCONF"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".kplex.conf")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	const systemWide = "/etc/kplex.conf"
	if _, err := os.Stat(systemWide); err == nil {
		return systemWide
	}
	return ""
}

// sectionLines scans raw for "[name]" header lines, in file order,
// ignoring comment lines (leading '#' or ';'), and returns the 1-based
// source line number of each. ini.v1 preserves file order in
// f.Sections() (including repeats, under AllowNonUniqueSections), so
// the Nth entry here corresponds to the Nth non-DEFAULT section.
func sectionLines(raw []byte) []int {
	var lines []int
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		t := strings.TrimSpace(scanner.Text())
		if t == "" || strings.HasPrefix(t, "#") || strings.HasPrefix(t, ";") {
			continue
		}
		if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
			lines = append(lines, lineNo)
		}
	}
	return lines
}

// ParseFile loads an INI-style config file into a Global plus one
// Descriptor per non-global section. Sections are named after the
// interface type they configure ([serial], [tcp], [broadcast], [file],
// [pty], [seatalk]), matching spec.md §6; a type may appear more than
// once for multiple instances of that interface.
func ParseFile(path string) (Global, []Descriptor, error) {
	g := Global{QSize: DefaultQueueSize}

	raw, err := os.ReadFile(path)
	if err != nil {
		return g, nil, trace.ConvertSystemError(err)
	}
	lines := sectionLines(raw)

	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:       true,
		AllowNonUniqueSections: true,
	}, raw)
	if err != nil {
		return g, nil, trace.Wrap(err, "parsing config file %q", path)
	}

	var descs []Descriptor
	sawGlobal := false
	idx := 0

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		line := 0
		if idx < len(lines) {
			line = lines[idx]
		}
		idx++

		if sec.Name() == "global" {
			if sawGlobal {
				return g, nil, trace.BadParameter("duplicate global section at line %d", line)
			}
			sawGlobal = true
			if sec.HasKey("qsize") {
				n, err := sec.Key("qsize").Int()
				if err != nil {
					return g, nil, trace.BadParameter("config file %q: [global] qsize must be an integer", path)
				}
				if n < 2 {
					return g, nil, trace.BadParameter("config file %q: [global] qsize must be at least 2", path)
				}
				g.QSize = n
			}
			if sec.HasKey("mode") {
				g.Background = sec.Key("mode").String() == "background"
			}
			if sec.HasKey("logto") {
				g.LogTo = sec.Key("logto").String()
			}
			continue
		}

		kind := sec.Name()
		if !validKinds[kind] {
			return g, nil, trace.BadParameter("config file %q: unknown section %q at line %d", path, kind, line)
		}

		opts := make(map[string]string)
		for _, k := range sec.Keys() {
			opts[k.Name()] = k.String()
		}

		if kind != "seatalk" {
			if _, ok := opts["direction"]; !ok {
				return g, nil, trace.BadParameter("config file %q: section %q at line %d missing required \"direction\" key", path, kind, line)
			}
		}

		descs = append(descs, Descriptor{Kind: kind, Options: opts, Line: line})
	}

	return g, descs, nil
}
