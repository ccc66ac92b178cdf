package nxssetup

import (
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"
)

func newKey(t *testing.T) gossh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key, err := gossh.NewPublicKey(pub)
	require.NoError(t, err)
	return key
}

func writeKeys(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authorized_keys")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPublicKeyHandler(t *testing.T) {
	allowed, other := newKey(t), newKey(t)
	path := writeKeys(t, "# operators\n\n"+string(gossh.MarshalAuthorizedKey(allowed)))

	keys, err := LoadAuthorizedKeys(path)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	log := logrus.New()
	log.SetOutput(io.Discard)
	handler := PublicKeyHandler(keys, log)
	assert.True(t, handler(nil, allowed))
	assert.False(t, handler(nil, other))
}

func TestLoadAuthorizedKeysRefusesEmpty(t *testing.T) {
	_, err := LoadAuthorizedKeys("")
	assert.ErrorContains(t, err, "ssh.authorized_keys")

	_, err = LoadAuthorizedKeys(writeKeys(t, "# nobody yet\n"))
	assert.ErrorContains(t, err, "no authorized keys")

	_, err = LoadAuthorizedKeys(writeKeys(t, "ssh-ed25519 not-base64\n"))
	assert.Error(t, err)

	_, err = LoadAuthorizedKeys(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
