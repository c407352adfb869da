package stall

import (
	"errors"
	"fmt"

	"github.com/tranvictor/kiosk/common"
)

var (
	// ErrSeedReused is returned when an owner tries to create a second stall
	// with the seed of the stall it already has.
	ErrSeedReused = errors.New("seed has already been used")
	// ErrNoStall is returned when an operation needs a remembered stall and
	// there is none for the owner.
	ErrNoStall = errors.New("no stall remembered for owner")
)

// Store is the key value persistence the registry writes to. Get reports
// found=false for missing keys. Implementations live in util/cache.
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

const KeyPrefix = "stall_address"

func AddressKey(owner common.Address) string {
	return fmt.Sprintf("%s:%s", KeyPrefix, owner.Hex())
}

func SeedKey(owner common.Address) string {
	return AddressKey(owner) + "_seed"
}

func SourceKey(owner common.Address) string {
	return AddressKey(owner) + "_source"
}

// Record is the result of one successful stall creation.
type Record struct {
	Owner        common.Address `json:"owner"`
	Seed         string         `json:"seed"`
	StallAddress string         `json:"stall_address"`
	Source       Source         `json:"source"`
}

// NewRecord builds the Record for a resolution of owner and seed.
func NewRecord(owner, seed string, res Resolution) (Record, error) {
	o, err := common.ParseAddress(owner)
	if err != nil {
		return Record{}, fmt.Errorf("stall owner: %w", err)
	}
	return Record{
		Owner:        o,
		Seed:         seed,
		StallAddress: res.Address,
		Source:       res.Source,
	}, nil
}

// Registry remembers the current stall of each owner. Writes to one owner
// are not synchronized; two concurrent creations for the same owner leave
// whichever record was written last.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Remember stores rec, replacing whatever was stored for rec.Owner.
// The address key is written last so a partial write never looks like a
// complete record.
func (r *Registry) Remember(rec Record) error {
	if rec.StallAddress == "" {
		return fmt.Errorf("record for %s has no stall address", rec.Owner)
	}
	if err := r.store.Set(SeedKey(rec.Owner), rec.Seed); err != nil {
		return fmt.Errorf("couldn't store stall seed: %w", err)
	}
	if err := r.store.Set(SourceKey(rec.Owner), rec.Source.String()); err != nil {
		return fmt.Errorf("couldn't store stall source: %w", err)
	}
	if err := r.store.Set(AddressKey(rec.Owner), rec.StallAddress); err != nil {
		return fmt.Errorf("couldn't store stall address: %w", err)
	}
	return nil
}

// Lookup returns the remembered stall of owner. found is false when
// nothing was remembered.
func (r *Registry) Lookup(owner string) (rec Record, found bool, err error) {
	o, err := common.ParseAddress(owner)
	if err != nil {
		return Record{}, false, fmt.Errorf("stall owner: %w", err)
	}
	addr, found, err := r.store.Get(AddressKey(o))
	if err != nil || !found {
		return Record{}, false, err
	}
	seed, _, err := r.store.Get(SeedKey(o))
	if err != nil {
		return Record{}, false, err
	}
	source := SourceUnknown
	if name, found, err := r.store.Get(SourceKey(o)); err != nil {
		return Record{}, false, err
	} else if found {
		// records written before the source key existed stay SourceUnknown
		source, _ = ParseSource(name)
	}
	return Record{Owner: o, Seed: seed, StallAddress: addr, Source: source}, true, nil
}

// StallAddress is Lookup returning only the address, with ErrNoStall when
// nothing is remembered.
func (r *Registry) StallAddress(owner string) (string, error) {
	rec, found, err := r.Lookup(owner)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%s: %w", owner, ErrNoStall)
	}
	return rec.StallAddress, nil
}

// CheckSeed returns ErrSeedReused when seed is the seed of the stall
// remembered for owner.
func (r *Registry) CheckSeed(owner, seed string) error {
	o, err := common.ParseAddress(owner)
	if err != nil {
		return fmt.Errorf("stall owner: %w", err)
	}
	stored, found, err := r.store.Get(SeedKey(o))
	if err != nil {
		return err
	}
	if found && stored == seed {
		return fmt.Errorf("seed %q: %w, please use a different seed", seed, ErrSeedReused)
	}
	return nil
}

// Forget removes the stall address, seed and source of owner so a new
// stall can be created with a fresh seed.
func (r *Registry) Forget(owner string) error {
	o, err := common.ParseAddress(owner)
	if err != nil {
		return fmt.Errorf("stall owner: %w", err)
	}
	var errs []error
	for _, key := range []string{AddressKey(o), SeedKey(o), SourceKey(o)} {
		if err := r.store.Remove(key); err != nil {
			errs = append(errs, fmt.Errorf("couldn't remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
