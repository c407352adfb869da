package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/util/account"
)

const (
	KindKey = "key"
)

var ErrAccountNotFound = errors.New("no account found")

type AccDesc struct {
	Address string
	Kind    string
	Keypath string
	Desc    string
}

// Book keeps one json description per account in dir, named after the
// account address.
type Book struct {
	dir string
}

func NewBook(dir string) *Book {
	return &Book{dir: dir}
}

func (b *Book) Dir() string {
	return b.dir
}

func (b *Book) StoreAccountRecord(accDesc AccDesc) error {
	addr, err := common.CanonicalAddress(accDesc.Address)
	if err != nil {
		return err
	}
	accDesc.Address = addr
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(b.dir, fmt.Sprintf("%s.json", addr))
	content, err := json.MarshalIndent(accDesc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// AddKeyAccount records the private key file at keypath. The address is
// read from the key itself.
func (b *Book) AddKeyAccount(keypath, desc string) (AccDesc, error) {
	abs, err := filepath.Abs(keypath)
	if err != nil {
		return AccDesc{}, err
	}
	addr, _, err := account.PrivateKeyFromFile(abs)
	if err != nil {
		return AccDesc{}, err
	}
	ad := AccDesc{Address: addr.Hex(), Kind: KindKey, Keypath: abs, Desc: desc}
	return ad, b.StoreAccountRecord(ad)
}

// GetAccounts returns address -> description. Unreadable files are
// reported in the returned error and skipped.
func (b *Book) GetAccounts() (map[string]AccDesc, error) {
	paths, err := filepath.Glob(filepath.Join(b.dir, "*.json"))
	if err != nil {
		return map[string]AccDesc{}, err
	}
	result := map[string]AccDesc{}
	var errs []error
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		desc := AccDesc{}
		if err := json.Unmarshal(content, &desc); err != nil {
			errs = append(errs, fmt.Errorf("reading account %s description failed: %w", p, err))
			continue
		}
		addr, err := common.CanonicalAddress(strings.TrimSuffix(filepath.Base(p), ".json"))
		if err != nil {
			errs = append(errs, fmt.Errorf("account file %s: %w", p, err))
			continue
		}
		result[addr] = desc
	}
	return result, errors.Join(errs...)
}

// List returns the accounts sorted by description.
func (b *Book) List() ([]AccDesc, error) {
	accs, err := b.GetAccounts()
	res := make([]AccDesc, 0, len(accs))
	for _, acc := range accs {
		res = append(res, acc)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Desc == res[j].Desc {
			return res[i].Address < res[j].Address
		}
		return res[i].Desc < res[j].Desc
	})
	return res, err
}

// GetAccount finds an account by exact address or by fuzzy match on
// "<address>_<description>".
func (b *Book) GetAccount(input string) (AccDesc, error) {
	accs, _ := b.GetAccounts()
	if addr, err := common.CanonicalAddress(input); err == nil {
		if acc, found := accs[addr]; found {
			return acc, nil
		}
	}
	source := NewFuzzySource(accs)
	matches := fuzzy.FindFrom(strings.Replace(input, " ", "_", -1), source)
	if len(matches) == 0 {
		return AccDesc{}, fmt.Errorf("'%s': %w", input, ErrAccountNotFound)
	}
	return source[matches[0].Index], nil
}

// UnlockAccount loads the signer of ad.
func UnlockAccount(ad AccDesc) (*account.Account, error) {
	switch ad.Kind {
	case KindKey:
		acc, err := account.NewKeyAccount(ad.Keypath)
		if err != nil {
			return nil, fmt.Errorf("unlocking key '%s' failed: %w", ad.Keypath, err)
		}
		if want, err := common.ParseAddress(ad.Address); err != nil || want != acc.Address() {
			return nil, fmt.Errorf("key %s belongs to %s, not %s", ad.Keypath, acc.AddressHex(), ad.Address)
		}
		return acc, nil
	}
	return nil, fmt.Errorf("account kind '%s' is not supported", ad.Kind)
}
