package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/squeue"
)

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open(config.Descriptor{Kind: "frobnicate"}, squeue.New(4), 4)
	assert.Error(t, err)
}

func TestDirectionValidation(t *testing.T) {
	_, err := direction(config.Descriptor{Kind: "tcp", Options: map[string]string{"direction": "sideways"}})
	assert.Error(t, err)

	d, err := direction(config.Descriptor{Kind: "tcp", Options: map[string]string{"direction": "both"}})
	assert.NoError(t, err)
	assert.Equal(t, "both", d.String())
}

func TestFileInterfaceRejectsBoth(t *testing.T) {
	dir := t.TempDir()
	_, err := initFile(config.Descriptor{
		Kind: "file",
		Options: map[string]string{
			"filename":  dir + "/out.log",
			"direction": "both",
		},
	}, squeue.New(4), 4)
	assert.Error(t, err)
}

func TestFileOutputInitializesOneInterface(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.nmea"

	ifcs, err := initFile(config.Descriptor{
		Kind:    "file",
		Options: map[string]string{"filename": path, "direction": "out"},
	}, nil, 4)
	assert.NoError(t, err)
	assert.Len(t, ifcs, 1)
	ifcs[0].Cleanup(ifcs[0])
}
