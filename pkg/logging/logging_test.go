package logging

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nxs.log")
	log, closer, err := New(Options{File: path, Verbose: true})
	require.NoError(t, err)

	log.WithField("phase", "Network").Debug("probe finished")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "probe finished")
	assert.Contains(t, string(data), "phase=Network")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLevels(t *testing.T) {
	log, _, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	_, _, err = New(Options{File: t.TempDir() + string(os.PathSeparator)})
	assert.Error(t, err)
}

func TestJournalHook(t *testing.T) {
	type sent struct {
		msg  string
		pri  journal.Priority
		vars map[string]string
	}
	var got []sent
	h := NewJournalHook("nxs")
	h.send = func(msg string, pri journal.Priority, vars map[string]string) error {
		got = append(got, sent{msg, pri, vars})
		return nil
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(h)

	log.WithField("disk-path", "/dev/sda").Warn("disk probe failed")
	log.Info("not forwarded")

	require.Len(t, got, 1)
	assert.Equal(t, "disk probe failed", got[0].msg)
	assert.Equal(t, journal.PriWarning, got[0].pri)
	assert.Equal(t, "/dev/sda", got[0].vars["NXS_DISK_PATH"])
	assert.Equal(t, "nxs", got[0].vars["SYSLOG_IDENTIFIER"])
}
