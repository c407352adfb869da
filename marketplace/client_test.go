package marketplace

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/stall"
	"github.com/tranvictor/kiosk/util/account"
	"github.com/tranvictor/kiosk/util/cache"
	"github.com/tranvictor/kiosk/util/reader"
)

const (
	keyHex     = "0x000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	eventStall = "0x00000000000000000000000000000000000000000000000000000000000000e1"
	objectAddr = "0xb0"
)

type viewCall struct {
	Function string
	Args     []any
}

// fakeChain encodes transactions the way a node of chain chainID does,
// unless tamper is set.
type fakeChain struct {
	chainID      uint8
	chainIDCalls int
	seq          uint64
	seqErr       error
	views        map[string][]json.RawMessage
	viewErr      error
	viewCalls    []viewCall
	encoded      []*common.RawTransaction
	tamper       []byte

	resources   []reader.Resource
	resourceErr error
	assets      []reader.DigitalAsset
	assetErr    error
}

func (f *fakeChain) ChainID(ctx context.Context) (uint8, error) {
	f.chainIDCalls++
	return f.chainID, nil
}

func (f *fakeChain) SequenceNumber(ctx context.Context, address string) (uint64, error) {
	return f.seq, f.seqErr
}

func (f *fakeChain) EstimateGasPrice(ctx context.Context) (uint64, error) {
	return 0, errors.New("not supported")
}

func (f *fakeChain) EncodeSubmission(ctx context.Context, tx *common.RawTransaction) ([]byte, error) {
	f.encoded = append(f.encoded, tx)
	if f.tamper != nil {
		return f.tamper, nil
	}
	return common.SigningMessage(tx, f.chainID)
}

func (f *fakeChain) AccountResources(ctx context.Context, address string) ([]reader.Resource, error) {
	return f.resources, f.resourceErr
}

func (f *fakeChain) OwnedDigitalAssets(ctx context.Context, owner string, limit int) ([]reader.DigitalAsset, error) {
	return f.assets, f.assetErr
}

func (f *fakeChain) View(ctx context.Context, function string, typeArgs []string, args ...any) ([]json.RawMessage, error) {
	f.viewCalls = append(f.viewCalls, viewCall{function, args})
	if f.viewErr != nil {
		return nil, f.viewErr
	}
	return f.views[function], nil
}

type fakeBroadcaster struct {
	sent []*common.SignedTransaction
	err  error
}

func (f *fakeBroadcaster) BroadcastTx(ctx context.Context, tx *common.SignedTransaction) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	f.sent = append(f.sent, tx)
	return "0xabc", true, nil
}

type fakeWaiter struct {
	info common.TxInfo
}

func (f *fakeWaiter) BlockingWait(ctx context.Context, hash string) (common.TxInfo, error) {
	return f.info, nil
}

func doneWith(events ...common.Event) common.TxInfo {
	return common.TxInfo{
		Status: common.TxStatusDone,
		Tx:     &common.Transaction{Type: "user_transaction", Hash: "0xabc", Success: true, Events: events},
	}
}

type fixture struct {
	chain    *fakeChain
	bc       *fakeBroadcaster
	waiter   *fakeWaiter
	registry *stall.Registry
	acc      *account.Account
	client   *Client
	logs     *observer.ObservedLogs
	hooked   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	acc, err := account.NewKeyAccountFromHex(keyHex)
	require.NoError(t, err)
	module, err := NewModule("0x42")
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)

	f := &fixture{
		chain:    &fakeChain{chainID: 4, seq: 7, views: map[string][]json.RawMessage{}},
		bc:       &fakeBroadcaster{},
		waiter:   &fakeWaiter{info: doneWith()},
		registry: stall.NewRegistry(cache.NewMemoryStore()),
		acc:      acc,
		logs:     logs,
	}
	f.client = NewClient(module, f.chain, f.bc, f.waiter, acc, f.registry,
		WithClientLogger(zap.New(core)),
		WithSubmittedHook(func(op Op, hash string) { f.hooked = append(f.hooked, string(op)+" "+hash) }),
		withClock(func() time.Time { return time.Unix(1_700_000_000, 0) }),
	)
	return f
}

func TestCreateStallUsesEventAddress(t *testing.T) {
	f := newFixture(t)
	f.waiter.info = doneWith(common.Event{
		Type: "0x42::marketplace::StallCreated",
		Data: map[string]any{"stall_addr": "0xe1"},
	})

	rec, err := f.client.CreateStall(context.Background(), "my-stall")
	require.NoError(t, err)
	require.Equal(t, eventStall, rec.StallAddress)
	require.Equal(t, stall.SourceEventData, rec.Source)
	require.Equal(t, []string{"create stall 0xabc"}, f.hooked)

	raw := f.chain.encoded[0]
	require.Equal(t, f.acc.AddressHex(), raw.Sender)
	require.Equal(t, "7", raw.SequenceNumber)
	require.Equal(t, "100", raw.GasUnitPrice)
	require.Equal(t, "1700000060", raw.ExpirationTimestampSecs)
	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000042::marketplace::create_stall", raw.Payload.Function)
	require.Equal(t, []any{"my-stall"}, raw.Payload.Arguments)

	got, err := f.registry.StallAddress(f.acc.AddressHex())
	require.NoError(t, err)
	require.Equal(t, eventStall, got)
}

func TestCreateStallDerivesWithoutEvent(t *testing.T) {
	f := newFixture(t)
	rec, err := f.client.CreateStall(context.Background(), "my-stall")
	require.NoError(t, err)

	want, err := common.DeriveResourceAddress(f.acc.AddressHex(), "my-stall")
	require.NoError(t, err)
	require.Equal(t, want.Hex(), rec.StallAddress)
	require.Equal(t, stall.SourceDerived, rec.Source)
	require.Equal(t, 1, f.logs.FilterMessage("stall created").Len())
}

func TestCreateStallRefusesReusedSeed(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CreateStall(context.Background(), "my-stall")
	require.NoError(t, err)

	_, err = f.client.CreateStall(context.Background(), "my-stall")
	require.ErrorIs(t, err, stall.ErrSeedReused)
	require.Len(t, f.bc.sent, 1, "nothing is submitted for a reused seed")

	_, err = f.client.CreateStall(context.Background(), "my-stall-2")
	require.NoError(t, err)
}

func TestCreateStallRevertedKeepsRegistry(t *testing.T) {
	f := newFixture(t)
	f.waiter.info = common.TxInfo{
		Status: common.TxStatusReverted,
		Tx:     &common.Transaction{Hash: "0xabc", VMStatus: "Move abort in 0x1::resource_account: EACCOUNT_ALREADY_USED(0x80001)"},
	}
	_, err := f.client.CreateStall(context.Background(), "my-stall")
	require.ErrorIs(t, err, ErrTxReverted)
	require.Equal(t, "Seed Already Used", Explain(OpCreateStall, err).Title)

	_, found, err := f.registry.Lookup(f.acc.AddressHex())
	require.NoError(t, err)
	require.False(t, found)
}

func TestSubmitErrors(t *testing.T) {
	f := newFixture(t)
	f.bc.err = errors.New("all nodes down")
	_, err := f.client.CreateStall(context.Background(), "s")
	require.ErrorContains(t, err, "couldn't broadcast tx")

	f = newFixture(t)
	f.waiter.info = common.TxInfo{Status: common.TxStatusLost}
	_, err = f.client.CreateStall(context.Background(), "s")
	require.ErrorIs(t, err, ErrTxLost)

	f = newFixture(t)
	f.chain.seqErr = errors.New("account not found")
	_, err = f.client.CreateStall(context.Background(), "s")
	require.ErrorContains(t, err, "sequence number")
}

func TestListItemNeedsStall(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.ListItem(context.Background(), objectAddr, 150_000_000)
	require.ErrorIs(t, err, stall.ErrNoStall)
	require.Empty(t, f.bc.sent)
}

func TestListItemAndBuyPayloads(t *testing.T) {
	f := newFixture(t)
	f.waiter.info = doneWith(common.Event{
		Type: "0x42::marketplace::StallCreated",
		Data: map[string]any{"stall_addr": eventStall},
	})
	_, err := f.client.CreateStall(context.Background(), "my-stall")
	require.NoError(t, err)

	_, err = f.client.ListItem(context.Background(), objectAddr, 150_000_000)
	require.NoError(t, err)
	list := f.chain.encoded[1].Payload
	require.Equal(t, []string{ObjectCoreType}, list.TypeArguments)
	require.Equal(t, []any{
		eventStall,
		"0x00000000000000000000000000000000000000000000000000000000000000b0",
		"150000000",
	}, list.Arguments)

	_, err = f.client.Buy(context.Background(), "0xe2", objectAddr, 42)
	require.NoError(t, err)
	buy := f.chain.encoded[2].Payload
	require.Contains(t, buy.Function, "::marketplace::buy")
	require.Equal(t, "0x00000000000000000000000000000000000000000000000000000000000000e2", buy.Arguments[0])
	require.Equal(t, "42", buy.Arguments[2])

	_, err = f.client.Buy(context.Background(), "", objectAddr, 42)
	require.NoError(t, err)
	require.Equal(t, eventStall, f.chain.encoded[3].Payload.Arguments[0])
}

func TestViews(t *testing.T) {
	f := newFixture(t)
	m := f.client.Module()
	f.chain.views[m.Function(IsListedView)] = []json.RawMessage{json.RawMessage(`true`)}
	f.chain.views[m.Function(GetPriceView)] = []json.RawMessage{json.RawMessage(`"250000000"`)}
	f.chain.views[m.Function(GetStallOwnerView)] = []json.RawMessage{json.RawMessage(`"0xa"`)}

	listed, err := f.client.IsListed(context.Background(), eventStall, objectAddr)
	require.NoError(t, err)
	require.True(t, listed)

	price, err := f.client.Price(context.Background(), eventStall, objectAddr)
	require.NoError(t, err)
	require.Equal(t, uint64(250_000_000), price)

	owner, err := f.client.StallOwner(context.Background(), eventStall)
	require.NoError(t, err)
	require.Equal(t, common.MustParseAddress("0xa"), owner)

	require.Equal(t, []any{eventStall, "0x00000000000000000000000000000000000000000000000000000000000000b0"}, f.chain.viewCalls[0].Args)

	_, err = f.client.Price(context.Background(), "", objectAddr)
	require.ErrorIs(t, err, stall.ErrNoStall)
}

func TestStallStatus(t *testing.T) {
	f := newFixture(t)
	owner := f.acc.AddressHex()

	st, err := f.client.StallStatus(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, st.Remembered)
	require.False(t, st.Valid)

	_, err = f.client.CreateStall(context.Background(), "my-stall")
	require.NoError(t, err)

	f.chain.viewErr = errors.New("Move abort: E_KIOSK_NOT_FOUND(0x1)")
	st, err = f.client.StallStatus(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, st.Remembered)
	require.False(t, st.Valid)
	require.Contains(t, st.CheckErr, "E_KIOSK_NOT_FOUND")

	f.chain.viewErr = nil
	f.chain.views[f.client.Module().Function(GetStallOwnerView)] = []json.RawMessage{json.RawMessage(`"` + owner + `"`)}
	st, err = f.client.StallStatus(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, st.Valid)
	require.Equal(t, f.acc.Address(), st.Owner)
	require.Equal(t, "my-stall", st.Record.Seed)
}

func TestReadOnlyClient(t *testing.T) {
	module, err := NewModule("")
	require.NoError(t, err)
	c := NewClient(module, &fakeChain{}, &fakeBroadcaster{}, &fakeWaiter{}, nil, stall.NewRegistry(cache.NewMemoryStore()))
	_, err = c.CreateStall(context.Background(), "s")
	require.ErrorIs(t, err, ErrNoAccount)
	_, err = c.ListItem(context.Background(), objectAddr, 1)
	require.ErrorIs(t, err, ErrNoAccount)
}

func TestGasUnitPriceOverride(t *testing.T) {
	f := newFixture(t)
	WithGasUnitPrice(150)(f.client)
	WithMaxGasAmount(5000)(f.client)
	_, err := f.client.CreateStall(context.Background(), "s")
	require.NoError(t, err)
	require.Equal(t, "150", f.chain.encoded[0].GasUnitPrice)
	require.Equal(t, "5000", f.chain.encoded[0].MaxGasAmount)
}

func TestSubmitSignsLocalEncoding(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CreateStall(context.Background(), "my-stall")
	require.NoError(t, err)

	msg, err := common.SigningMessage(f.chain.encoded[0], 4)
	require.NoError(t, err)
	sig, err := hexutil.Decode(f.bc.sent[0].Signature.Signature)
	require.NoError(t, err)
	require.True(t, ed25519.Verify(f.acc.PublicKey(), msg, sig))

	_, err = f.client.CreateStall(context.Background(), "my-stall-2")
	require.NoError(t, err)
	require.Equal(t, 1, f.chain.chainIDCalls, "the chain id is asked once")
}

func TestSubmitRefusesNodeEncoding(t *testing.T) {
	f := newFixture(t)
	f.chain.tamper = []byte("signing message")

	_, err := f.client.CreateStall(context.Background(), "my-stall")
	require.ErrorIs(t, err, ErrEncodingMismatch)
	require.Empty(t, f.bc.sent, "nothing is signed or broadcast")
	require.Empty(t, f.hooked)
	require.Equal(t, "Encoding Mismatch", Explain(OpCreateStall, err).Title)
	require.Equal(t, 1, f.logs.FilterMessage("node encoded the tx differently, not signing").Len())

	_, found, err := f.registry.Lookup(f.acc.AddressHex())
	require.NoError(t, err)
	require.False(t, found)
}

func TestSubmitRefusesNodeOfOtherChain(t *testing.T) {
	f := newFixture(t)
	WithChainID(2)(f.client)

	_, err := f.client.CreateStall(context.Background(), "my-stall")
	require.ErrorIs(t, err, ErrEncodingMismatch)
	require.Empty(t, f.bc.sent)
	require.Zero(t, f.chain.chainIDCalls)
}

func TestSubmitRefusesUntypedPayload(t *testing.T) {
	f := newFixture(t)
	payload := common.NewEntryFunctionPayload(f.client.Module().Function(CreateStallFunction), nil, "shop")

	_, err := f.client.submit(context.Background(), OpCreateStall, payload)
	require.ErrorIs(t, err, common.ErrUnencodable)
	require.Empty(t, f.chain.encoded, "the node is not asked")
	require.Empty(t, f.bc.sent)
}

func TestTestNFTPayloads(t *testing.T) {
	f := newFixture(t)
	module := f.client.Module()

	_, err := f.client.CreateTestCollection(context.Background())
	require.NoError(t, err)
	collection := f.chain.encoded[0].Payload
	require.Equal(t, module.Address.Hex()+"::test_nft::create_test_collection", collection.Function)
	require.Empty(t, collection.Arguments)
	require.Equal(t, []string{"create collection 0xabc"}, f.hooked)

	_, err = f.client.MintTestNFT(context.Background(), "sword", "sharp", "https://x/1.png", "")
	require.NoError(t, err)
	mint := f.chain.encoded[1].Payload
	require.Equal(t, module.NFTFunction(CreateTestNFTFunction), mint.Function)
	require.Equal(t, []any{"sword", "sharp", "https://x/1.png", f.acc.AddressHex()}, mint.Arguments)

	_, err = f.client.MintTestNFT(context.Background(), "shield", "", "", "0xb0b")
	require.NoError(t, err)
	require.Equal(t, common.MustParseAddress("0xb0b").Hex(), f.chain.encoded[2].Payload.Arguments[3])

	_, err = f.client.MintTestNFT(context.Background(), "", "", "", "")
	require.ErrorContains(t, err, "needs a name")
	_, err = f.client.MintTestNFT(context.Background(), "x", "", "", "bob")
	require.ErrorIs(t, err, common.ErrInvalidAddress)
	require.Len(t, f.bc.sent, 3)
}

func TestOwnedAssets(t *testing.T) {
	f := newFixture(t)
	owner := f.acc.AddressHex()
	f.chain.assets = []reader.DigitalAsset{
		{TokenDataID: "0xb0", TokenData: &reader.TokenData{TokenName: "sword", CollectionID: "0xc0", TokenURI: "https://x/1.png"}},
		{StorageID: "0xb1"},
		{TokenDataID: "0xb0", TokenData: &reader.TokenData{TokenName: "sword", CollectionID: "0xc0", TokenURI: "https://x/1.png"}},
	}
	f.chain.resources = []reader.Resource{
		{Type: "0x1::account::Account"},
		{Type: "0x4::token::Token"},
		{Type: "0x4::collection::Collection"},
	}

	assets, err := f.client.OwnedAssets(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, assets, 4)
	require.Equal(t, OwnedAsset{
		Address:    common.MustParseAddress("0xb0").Hex(),
		Name:       "sword",
		URI:        "https://x/1.png",
		Collection: "0xc0",
		Source:     AssetSourceIndexer,
	}, assets[0])
	require.Equal(t, "Unknown NFT", assets[1].Name)
	require.Equal(t, "Unknown Collection", assets[1].Collection)
	require.Equal(t, OwnedAsset{
		Address:     owner,
		Name:        "Resource 0",
		Description: "Token resource: 0x4::token::Token",
		Collection:  "Account Resources",
		Source:      AssetSourceResources,
	}, assets[2])
	require.Equal(t, "Resource 1", assets[3].Name)
}

func TestOwnedAssetsFallsBackToResources(t *testing.T) {
	f := newFixture(t)
	f.chain.assetErr = reader.ErrIndexer
	f.chain.resources = []reader.Resource{{Type: "0x4::token::Token"}}

	assets, err := f.client.OwnedAssets(context.Background(), f.acc.AddressHex())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Equal(t, AssetSourceResources, assets[0].Source)
	require.Equal(t, 1, f.logs.FilterMessage("couldn't list digital assets from the indexer").Len())

	f.chain.resourceErr = reader.ErrAccountNotFound
	_, err = f.client.OwnedAssets(context.Background(), f.acc.AddressHex())
	require.ErrorIs(t, err, reader.ErrIndexer)
	require.ErrorIs(t, err, reader.ErrAccountNotFound)

	_, err = f.client.OwnedAssets(context.Background(), "cafe shop")
	require.ErrorIs(t, err, common.ErrInvalidAddress)
}
