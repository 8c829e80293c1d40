package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"campus-gms/types"
)

// ErrNoCredentials is returned when nothing has been saved yet.
var ErrNoCredentials = errors.New("no saved credentials")

// Credentials is what survives between runs of the client.
type Credentials struct {
	Server       string    `json:"server,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	DeviceID     string    `json:"device_id"`
	SavedAt      time.Time `json:"saved_at"`
}

// WithTokens returns c carrying the pair.
func (c Credentials) WithTokens(p types.TokenPair) Credentials {
	c.AccessToken = p.AccessToken
	c.RefreshToken = p.RefreshToken
	return c
}

// TokenStore reads and writes Credentials as a JSON file.
type TokenStore struct {
	path string
	now  func() time.Time
}

// NewTokenStore stores credentials at path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path, now: time.Now}
}

// DefaultTokenPath is ~/.gms/credentials.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".gms", "credentials.json"), nil
}

// Path returns the file backing the store.
func (ts *TokenStore) Path() string {
	return ts.path
}

// Load reads the saved credentials.
func (ts *TokenStore) Load() (Credentials, error) {
	data, err := os.ReadFile(ts.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("decode credentials %s: %w", ts.path, err)
	}
	return c, nil
}

// Save writes c, readable by the owner only.
func (ts *TokenStore) Save(c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(ts.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	c.SavedAt = ts.now().UTC()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp := ts.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, ts.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

// DeviceID returns the saved device id, generating and saving one on
// first use.
func (ts *TokenStore) DeviceID() (string, error) {
	c, err := ts.Load()
	if err != nil && !errors.Is(err, ErrNoCredentials) {
		return "", err
	}
	if c.DeviceID != "" {
		return c.DeviceID, nil
	}
	c.DeviceID = uuid.NewString()
	if err := ts.Save(c); err != nil {
		return "", err
	}
	return c.DeviceID, nil
}

// ClearTokens drops the tokens but keeps the device id.
func (ts *TokenStore) ClearTokens() error {
	c, err := ts.Load()
	if errors.Is(err, ErrNoCredentials) {
		return nil
	}
	if err != nil {
		return err
	}
	c.AccessToken, c.RefreshToken = "", ""
	return ts.Save(c)
}
