package files

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SigningKeyFile holds the hex-encoded master key used to sign login tokens
// when no secret is configured.
const SigningKeyFile = "signing.key"

const signingKeyLen = 32

// LoadOrCreateSigningKey reads dir/signing.key, generating it on first use.
// An existing file with the wrong length is an error and is never overwritten.
func LoadOrCreateSigningKey(dir string) ([]byte, error) {
	path := filepath.Join(dir, SigningKeyFile)
	data, err := os.ReadFile(path)
	if err == nil {
		key, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("%s: hex decode: %w", path, err)
		}
		if len(key) != signingKeyLen {
			return nil, fmt.Errorf("%s: key must be %d bytes (hex %d chars)", path, signingKeyLen, signingKeyLen*2)
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	key := make([]byte, signingKeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(hex.EncodeToString(key) + "\n"); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return key, nil
}
