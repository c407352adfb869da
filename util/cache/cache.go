package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps string key/value pairs in one json file. Keys are
// case-insensitive. The whole file is rewritten on every change.
type FileStore struct {
	path string
	mu   sync.Mutex
	data *simpleCache
}

type simpleCache struct {
	Data map[string]string `json:"Data"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) persist() error {
	jsonData, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, jsonData, 0o644)
}

// load reads the file once. A missing file is an empty cache, a corrupted
// one is an error so it never gets silently overwritten.
func (s *FileStore) load() (*simpleCache, error) {
	if s.data != nil {
		return s.data, nil
	}
	c := &simpleCache{Data: map[string]string{}}
	content, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = c
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, c); err != nil {
		return nil, fmt.Errorf("cache file %s is corrupted: %w", s.path, err)
	}
	if c.Data == nil {
		c.Data = map[string]string{}
	}
	s.data = c
	return c, nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, found := c.Data[strings.ToLower(key)]
	return value, found, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return err
	}
	c.Data[strings.ToLower(key)] = value
	return s.persist()
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return err
	}
	if _, found := c.Data[strings.ToLower(key)]; !found {
		return nil
	}
	delete(c.Data, strings.ToLower(key))
	return s.persist()
}

// Keys returns every stored key with the given prefix.
func (s *FileStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := []string{}
	for k := range c.Data {
		if strings.HasPrefix(k, strings.ToLower(prefix)) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
