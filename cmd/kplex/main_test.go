package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunNoInterfacesFails(t *testing.T) {
	assert.Equal(t, 1, run(nil))
}

func TestRunBadSpecifierFails(t *testing.T) {
	assert.Equal(t, 1, run([]string{"frobnicate:direction=in"}))
}

func TestRunBadLogFacilityFails(t *testing.T) {
	assert.Equal(t, 1, run([]string{"-l", "bogus", "file:direction=out,filename=/tmp/kplex-test-out.nmea"}))
}
