package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

type cachedToken struct {
	*oauth2.Token
	Scopes []string `json:"scopes,omitempty"`
}

// FileCache stores one credential in a JSON file
type FileCache struct {
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Path() string {
	return c.path
}

// Load reads the cached credential, nil without error when the file does not exist
func (c *FileCache) Load() (*Credential, error) {
	bs, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var v cachedToken
	if err := json.Unmarshal(bs, &v); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", c.path, err)
	}
	if v.Token == nil || (v.AccessToken == "" && v.RefreshToken == "") {
		return nil, nil
	}
	return &Credential{
		Scopes: v.Scopes,
		Token:  v.Token,
	}, nil
}

// Save replaces the cached credential.
// The file is written next to the target and renamed so readers never see a partial file.
func (c *FileCache) Save(cred *Credential) error {
	bs, err := json.MarshalIndent(cachedToken{Token: cred.Token, Scopes: cred.Scopes}, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if _, err := f.Write(bs); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
