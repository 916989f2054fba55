package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecifierBasic(t *testing.T) {
	d, err := ParseSpecifier("tcp:direction=both,address=localhost,port=10110")
	require.NoError(t, err)
	assert.Equal(t, "tcp", d.Kind)
	assert.Equal(t, "both", d.Options["direction"])
	assert.Equal(t, "10110", d.Options["port"])
}

func TestParseSpecifierQuotedCommaValue(t *testing.T) {
	d, err := ParseSpecifier(`file:direction=out,filename="log, final.txt"`)
	require.NoError(t, err)
	assert.Equal(t, "log, final.txt", d.Options["filename"])
}

func TestParseSpecifierMissingDirection(t *testing.T) {
	_, err := ParseSpecifier("tcp:address=localhost")
	assert.Error(t, err)
}

func TestParseSpecifierSeatalkNoDirectionRequired(t *testing.T) {
	d, err := ParseSpecifier("seatalk:filename=/dev/ttyUSB0")
	require.NoError(t, err)
	assert.Equal(t, "seatalk", d.Kind)
}

func TestParseSpecifierUnknownType(t *testing.T) {
	_, err := ParseSpecifier("frobnicate:direction=in")
	assert.Error(t, err)
}

func TestParseFileGlobalAndSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kplex.conf")
	contents := `
[global]
qsize=128
mode=background
logto=daemon

[serial]
direction=in
filename=/dev/ttyUSB0
baud=4800

[tcp]
direction=out
address=0.0.0.0
port=10110
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	g, descs, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 128, g.QSize)
	assert.True(t, g.Background)
	assert.Equal(t, "daemon", g.LogTo)
	require.Len(t, descs, 2)
	assert.Equal(t, "serial", descs[0].Kind)
	assert.Equal(t, "/dev/ttyUSB0", descs[0].Options["filename"])
	assert.Equal(t, "tcp", descs[1].Kind)
}

func TestParseFileRepeatedSectionSameType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kplex.conf")
	contents := `
[tcp]
direction=out
address=0.0.0.0
port=10110

[tcp]
direction=out
address=0.0.0.0
port=10111
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, descs, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, "10110", descs[0].Options["port"])
	assert.Equal(t, "10111", descs[1].Options["port"])
}

func TestParseFileDuplicateGlobalIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kplex.conf")
	contents := `
[global]
qsize=64

[global]
qsize=256
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, _, err := ParseFile(path)
	assert.EqualError(t, err, "duplicate global section at line 5")
}

func TestParseFileUnknownSectionIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kplex.conf")
	contents := `
[iface1]
direction=in
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, _, err := ParseFile(path)
	assert.Error(t, err)
}

func TestParseFileGlobalQsizeBelowMinimumIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kplex.conf")
	contents := `
[global]
qsize=1
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, _, err := ParseFile(path)
	assert.Error(t, err)
}

func TestDiscoverPathExplicitWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.conf")
	require.NoError(t, os.WriteFile(path, []byte("[global]\n"), 0o644))
	assert.Equal(t, path, DiscoverPath(path))
}

func TestDiscoverPathEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.conf")
	require.NoError(t, os.WriteFile(path, []byte("[global]\n"), 0o644))
	t.Setenv("KPLEXCONF", path)
	assert.Equal(t, path, DiscoverPath(""))
}

func TestFacilityLookup(t *testing.T) {
	_, err := Facility("local3")
	require.NoError(t, err)
	_, err = Facility("bogus")
	assert.Error(t, err)
}
