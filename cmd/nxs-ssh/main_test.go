package main

import (
	"testing"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/stretchr/testify/assert"
)

func TestLogOptionsFollowConfig(t *testing.T) {
	c := nixos.DefaultServerConfig()
	c.LogFile = "/var/log/nxs/ssh.log"
	c.Verbose = true

	opts := logOptions(c)
	assert.Equal(t, "/var/log/nxs/ssh.log", opts.File)
	assert.True(t, opts.Verbose)
	assert.True(t, opts.Journal)
}
