package config

import (
	"strings"

	"github.com/eapache/queue"
	"github.com/gravitational/trace"
)

// validKinds are the interface types spec.md §6 names.
var validKinds = map[string]bool{
	"file": true, "serial": true, "tcp": true,
	"broadcast": true, "pty": true, "seatalk": true,
}

// ParseSpecifier parses a CLI interface specifier of the form
// "<type>:<k>=<v>,<k>=<v>,...". direction is required for every type
// except seatalk.
func ParseSpecifier(spec string) (Descriptor, error) {
	kind, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return Descriptor{}, trace.BadParameter("malformed interface specifier %q: missing ':'", spec)
	}
	if !validKinds[kind] {
		return Descriptor{}, trace.BadParameter("unknown interface type %q", kind)
	}

	opts := make(map[string]string)
	for _, tok := range tokenize(rest) {
		if tok == "" {
			continue
		}
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			return Descriptor{}, trace.BadParameter("malformed option %q in specifier %q", tok, spec)
		}
		opts[strings.TrimSpace(k)] = unquote(strings.TrimSpace(v))
	}

	if kind != "seatalk" {
		if _, ok := opts["direction"]; !ok {
			return Descriptor{}, trace.BadParameter("interface specifier %q missing required \"direction\" option", spec)
		}
	}

	return Descriptor{Kind: kind, Options: opts}, nil
}

// tokenize splits a comma-separated option list, re-joining any split
// that landed inside a quoted value. A naive strings.Split(rest, ",")
// would break "filename=\"a,b\"" into two pieces; instead every piece is
// pushed onto a FIFO and popped one at a time, merging forward while its
// quote count is odd (an unterminated quote), so the reassembly needs
// only ever look one token ahead.
func tokenize(rest string) []string {
	q := queue.New()
	for _, part := range strings.Split(rest, ",") {
		q.Add(part)
	}

	var out []string
	for q.Length() > 0 {
		tok := q.Remove().(string)
		for unbalancedQuote(tok) && q.Length() > 0 {
			tok = tok + "," + q.Remove().(string)
		}
		out = append(out, tok)
	}
	return out
}

func unbalancedQuote(s string) bool {
	return strings.Count(s, `"`)%2 == 1 || strings.Count(s, `'`)%2 == 1
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
