package nxssetup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/ssh"
	"github.com/sirupsen/logrus"
	gossh "golang.org/x/crypto/ssh"
)

// LoadAuthorizedKeys reads an OpenSSH authorized_keys file. It fails when no
// path is given or the file holds no keys, so the server never starts open.
func LoadAuthorizedKeys(path string) ([]ssh.PublicKey, error) {
	if path == "" {
		return nil, errors.New("no authorized keys file configured (ssh.authorized_keys)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read authorized keys: %w", err)
	}

	var keys []ssh.PublicKey
	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n+1, err)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s: no authorized keys", path)
	}
	return keys, nil
}

// PublicKeyHandler accepts only the given keys.
func PublicKeyHandler(keys []ssh.PublicKey, log logrus.FieldLogger) ssh.PublicKeyHandler {
	return func(_ ssh.Context, key ssh.PublicKey) bool {
		for _, k := range keys {
			if ssh.KeysEqual(k, key) {
				return true
			}
		}
		log.WithField("fingerprint", gossh.FingerprintSHA256(key)).Warn("rejected public key")
		return false
	}
}
