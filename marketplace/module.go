// Package marketplace builds and submits the transactions of the on-chain
// marketplace module and reads its views.
package marketplace

import (
	"fmt"
	"strings"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/stall"
)

const (
	DefaultModuleAddress = "0x42"
	ModuleName           = "marketplace"

	CreateStallFunction = "create_stall"
	ListItemFunction    = "list_item"
	BuyFunction         = "buy"

	// Entry functions of the test_nft module deployed next to the
	// marketplace. They mint assets to list on test networks.
	NFTModuleName                = "test_nft"
	CreateTestCollectionFunction = "create_test_collection"
	CreateTestNFTFunction        = "create_test_nft"

	IsListedView      = "is_listed"
	GetPriceView      = "get_price"
	GetStallOwnerView = "get_stall_owner"

	// ObjectCoreType is the type argument of list_item and buy. It
	// accepts any object.
	ObjectCoreType = "0x1::object::ObjectCore"
)

// Module is a deployed marketplace module.
type Module struct {
	Address common.Address
	Name    string
}

func NewModule(address string) (Module, error) {
	if address == "" {
		address = DefaultModuleAddress
	}
	addr, err := common.ParseAddress(address)
	if err != nil {
		return Module{}, fmt.Errorf("module address: %w", err)
	}
	return Module{Address: addr, Name: ModuleName}, nil
}

func (m Module) String() string {
	return fmt.Sprintf("%s::%s", m.Address.ShortString(), m.Name)
}

// Function returns the fully qualified id of fn, e.g.
// 0x42::marketplace::buy.
func (m Module) Function(fn string) string {
	return fmt.Sprintf("%s::%s", m, fn)
}

// FunctionName returns the function part of id when id names an entry
// function of m. The address in id may be in short or long form.
func (m Module) FunctionName(id string) (string, bool) {
	parts := strings.Split(id, "::")
	if len(parts) != 3 || parts[1] != m.Name {
		return "", false
	}
	addr, err := common.ParseAddress(parts[0])
	if err != nil || addr != m.Address {
		return "", false
	}
	return parts[2], true
}

// EventType is the fully qualified type of an event the module emits.
func (m Module) EventType(name string) string {
	return m.Function(name)
}

// StallResolver returns a resolver that only trusts StallCreated events
// emitted by m.
func (m Module) StallResolver(opts ...stall.Option) *stall.Resolver {
	opts = append(opts, stall.WithEventType(m.EventType(stall.StallCreatedEvent)))
	return stall.NewResolver(opts...)
}

// NFTFunction returns the id of fn in the test_nft module published at
// the marketplace address.
func (m Module) NFTFunction(fn string) string {
	return fmt.Sprintf("%s::%s::%s", m.Address.ShortString(), NFTModuleName, fn)
}

const stringType = "0x1::string::String"

// argumentTypes are the Move parameter types of the entry functions kiosk
// calls, signer excluded.
var argumentTypes = map[string][]string{
	CreateStallFunction:          {stringType},
	ListItemFunction:             {"address", "address", "u64"},
	BuyFunction:                  {"address", "address", "u64"},
	CreateTestCollectionFunction: {},
	CreateTestNFTFunction:        {stringType, stringType, stringType, "address"},
}

// ArgumentTypes returns the parameter types of the entry function fn,
// given by its bare name.
func ArgumentTypes(fn string) ([]string, bool) {
	types, found := argumentTypes[fn]
	return types, found
}

func newPayload(id, fn string, typeArgs []string, args ...any) *common.EntryFunctionPayload {
	return common.NewEntryFunctionPayload(id, typeArgs, args...).Typed(argumentTypes[fn]...)
}

func (m Module) CreateStallPayload(seed string) *common.EntryFunctionPayload {
	return newPayload(m.Function(CreateStallFunction), CreateStallFunction, nil, seed)
}

func (m Module) ListItemPayload(stall, object common.Address, priceOctas uint64) *common.EntryFunctionPayload {
	return newPayload(
		m.Function(ListItemFunction), ListItemFunction,
		[]string{ObjectCoreType},
		stall.Hex(), object.Hex(), fmt.Sprintf("%d", priceOctas),
	)
}

// BuyPayload pays priceOctas for object. The module aborts with
// E_PRICE_MISMATCH when the listed price differs.
func (m Module) BuyPayload(stall, object common.Address, priceOctas uint64) *common.EntryFunctionPayload {
	return newPayload(
		m.Function(BuyFunction), BuyFunction,
		[]string{ObjectCoreType},
		stall.Hex(), object.Hex(), fmt.Sprintf("%d", priceOctas),
	)
}

// CreateTestCollectionPayload creates the sender's test collection. It
// has to exist before CreateTestNFTPayload can mint into it.
func (m Module) CreateTestCollectionPayload() *common.EntryFunctionPayload {
	return newPayload(m.NFTFunction(CreateTestCollectionFunction), CreateTestCollectionFunction, nil)
}

// CreateTestNFTPayload mints a token into the sender's test collection
// and transfers it to recipient.
func (m Module) CreateTestNFTPayload(name, description, uri string, recipient common.Address) *common.EntryFunctionPayload {
	return newPayload(
		m.NFTFunction(CreateTestNFTFunction), CreateTestNFTFunction,
		nil,
		name, description, uri, recipient.Hex(),
	)
}
