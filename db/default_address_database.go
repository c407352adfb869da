package db

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/sha3"

	"github.com/tranvictor/kiosk/common"
)

const Unknown = "unknown"

// DefaultAddressDatabase is the file of named addresses, a json map from
// address to name:
//
//	{
//	  "0xb0": "gold sword",
//	  "0x4f1c...": "bob's stall"
//	}
//
// Addresses are kept in canonical form.
type DefaultAddressDatabase struct {
	path string
	Data map[string]string
}

func NewDefaultAddressDatabase(path string) *DefaultAddressDatabase {
	return &DefaultAddressDatabase{path: path, Data: map[string]string{}}
}

// LoadDefaultAddressDatabase reads path. A missing file is an empty
// database, entries with malformed addresses are dropped.
func LoadDefaultAddressDatabase(path string) (*DefaultAddressDatabase, error) {
	db := NewDefaultAddressDatabase(path)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return db, err
	}
	data := map[string]string{}
	if err := json.Unmarshal(content, &data); err != nil {
		return db, fmt.Errorf("couldn't parse %s: %w", path, err)
	}
	for addr, name := range data {
		_ = db.Register(addr, name)
	}
	return db, nil
}

func (self *DefaultAddressDatabase) Path() string {
	return self.path
}

func (self *DefaultAddressDatabase) Register(addr string, name string) error {
	canonical, err := common.CanonicalAddress(addr)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("empty name for %s", canonical)
	}
	self.Data[canonical] = name
	return nil
}

func (self *DefaultAddressDatabase) GetName(addr string) string {
	canonical, err := common.CanonicalAddress(addr)
	if err != nil {
		return Unknown
	}
	if name, found := self.Data[canonical]; found {
		return name
	}
	return Unknown
}

func (self *DefaultAddressDatabase) Save() error {
	content, err := json.MarshalIndent(self.Data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(self.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(self.path, content, 0o644)
}

// Hash changes whenever an entry is added, removed or renamed. Search
// indexes use it to tell whether they are stale.
func (self *DefaultAddressDatabase) Hash() string {
	addrs := make([]string, 0, len(self.Data))
	for addr := range self.Data {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	h := sha3.New256()
	for _, addr := range addrs {
		fmt.Fprintf(h, "%s=%s\n", addr, self.Data[addr])
	}
	return hex.EncodeToString(h.Sum(nil))
}
