package cmd

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/marketplace"
	"github.com/tranvictor/kiosk/networks"
	"github.com/tranvictor/kiosk/stall"
	"github.com/tranvictor/kiosk/txanalyzer"
	"github.com/tranvictor/kiosk/ui"
	"github.com/tranvictor/kiosk/util/account"
	"github.com/tranvictor/kiosk/util/cache"
)

type env struct {
	node  *fakeNode
	home  string
	owner common.Address
}

// setup points kiosk at a fake node and a temp home with one account,
// described as alice.
func setup(t *testing.T) *env {
	home := t.TempDir()
	t.Setenv("KIOSK_HOME", home)
	t.Setenv("KIOSK_MODULE_ADDRESS", "")

	node, url := newFakeNode(t)
	oldNodes, oldPoll, oldLost, oldUI := nodesFor, pollInterval, lostAfter, appUI
	nodesFor = func(networks.Network) map[string]string { return map[string]string{"fake": url} }
	pollInterval = time.Millisecond
	lostAfter = 5 * time.Second
	t.Cleanup(func() {
		nodesFor, pollInterval, lostAfter, appUI = oldNodes, oldPoll, oldLost, oldUI
	})

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	key := ed25519.NewKeyFromSeed(seed)
	path, err := account.SavePrivateKeyFile(key, filepath.Join(home, "keys"))
	require.NoError(t, err)
	_, err = run(t, nil, "acc", "add", path, "alice")
	require.NoError(t, err)

	return &env{node: node, home: home, owner: account.AddressFromPrivateKey(key)}
}

func moduleFunction(name string) string {
	return common.MustParseAddress("0x42").Hex() + "::marketplace::" + name
}

func run(t *testing.T, inputs []string, args ...string) (*ui.RecordingUI, error) {
	t.Helper()
	rec := ui.NewRecordingUI(inputs...)
	appUI = rec
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return rec, root.Execute()
}

func TestDerive(t *testing.T) {
	t.Setenv("KIOSK_HOME", t.TempDir())

	rec, err := run(t, nil, "derive", "0x1", "my-stall")
	require.NoError(t, err)
	require.Equal(t,
		[]string{"0xe86afe49bf219aa3fdf25f54ce5bb2b876d98e9900186fa8277faec62610f811"},
		rec.InfoMessages(),
	)

	rec, err = run(t, nil, "derive", "0x1", "my-stall", "--json")
	require.NoError(t, err)
	res := deriveResult{}
	require.NoError(t, json.Unmarshal([]byte(rec.Output()), &res))
	require.Equal(t, "resource_account", res.Scheme)
	require.Equal(t, "0xe86afe49bf219aa3fdf25f54ce5bb2b876d98e9900186fa8277faec62610f811", res.Address)

	rec, err = run(t, nil, "derive", "0x1", "my-stall", "--object")
	require.NoError(t, err)
	require.Equal(t,
		[]string{common.DeriveObjectAddress(common.MustParseAddress("0x1"), []byte("my-stall")).Hex()},
		rec.InfoMessages(),
	)

	_, err = run(t, nil, "derive", "0xzz", "my-stall")
	require.ErrorIs(t, err, common.ErrInvalidAddress)
}

func TestStallCreateUsesEventAddress(t *testing.T) {
	e := setup(t)
	e.node.eventStall = "0xe1"

	rec, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stall address: 0x00000000000000000000000000000000000000000000000000000000000000e1")
	require.Contains(t, rec.KeyValues(), "Source: event_data")
	require.Empty(t, rec.WarnMessages())
	require.True(t, rec.HasMessage("Broadcasted create stall tx"))

	sent := e.node.lastSubmitted()
	require.NotNil(t, sent)
	require.Equal(t, moduleFunction("create_stall"), sent.Payload.Function)
	require.Equal(t, []any{"shop"}, sent.Payload.Arguments)
	require.Equal(t, e.owner.Hex(), sent.Sender)
	require.Equal(t, common.Ed25519SignatureType, sent.Signature.Type)

	rec, err = run(t, nil, "stall", "show", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stored seed: shop")
	require.Contains(t, rec.KeyValues(), "Stall status: Valid")
}

func TestStallCreateDerivesWithoutEvent(t *testing.T) {
	e := setup(t)
	e.node.emitEvent = false

	rec, err := run(t, nil, "stall", "create", "shop", "--from", "alice", "--json")
	require.NoError(t, err)
	got := stall.Record{}
	require.NoError(t, json.Unmarshal([]byte(rec.Output()), &got))

	derived, err := common.DeriveResourceAddress(e.owner.Hex(), "shop")
	require.NoError(t, err)
	require.Equal(t, derived.Hex(), got.StallAddress)
	require.Equal(t, stall.SourceDerived, got.Source)
	require.Equal(t, e.owner, got.Owner)
}

func TestStallCreateRandomSeed(t *testing.T) {
	setup(t)

	rec, err := run(t, nil, "stall", "create", "--from", "alice", "--json")
	require.NoError(t, err)
	got := stall.Record{}
	require.NoError(t, json.Unmarshal([]byte(rec.Output()), &got))
	require.Regexp(t, `^stall-[0-9a-f]{8}$`, got.Seed)
}

func TestStallCreateRefusesRememberedSeed(t *testing.T) {
	e := setup(t)

	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)
	submitted := len(e.node.submitted)

	_, err = run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.ErrorIs(t, err, stall.ErrSeedReused)
	explained := &marketplace.Explained{}
	require.True(t, errors.As(err, &explained))
	require.Equal(t, "Failed to Create Stall", explained.Title)
	require.Len(t, e.node.submitted, submitted, "nothing is submitted for a reused seed")

	_, err = run(t, nil, "stall", "create", "shop-2", "--from", "alice")
	require.NoError(t, err)
}

func TestStallCreateRevertedSeed(t *testing.T) {
	e := setup(t)
	e.node.revertWith = "Move abort in 0x1::resource_account: EACCOUNT_ALREADY_USED(0x80001)"

	_, err := run(t, nil, "stall", "create", "taken", "--from", "alice")
	explained := &marketplace.Explained{}
	require.True(t, errors.As(err, &explained))
	require.Equal(t, "Seed Already Used", explained.Title)
	require.ErrorIs(t, err, marketplace.ErrTxReverted)

	rec, err := run(t, nil, "stall", "show", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stall status: No stall created")
}

func TestStallClear(t *testing.T) {
	setup(t)
	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)

	rec, err := run(t, []string{"n"}, "stall", "clear", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.InfoMessages(), "Aborted.")

	_, err = run(t, []string{"y"}, "stall", "clear", "--from", "alice")
	require.NoError(t, err)

	rec, err = run(t, nil, "stall", "show", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stall status: No stall created")

	// the seed is free again once the stall is forgotten
	_, err = run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)
}

func TestStallShowInvalid(t *testing.T) {
	e := setup(t)
	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)
	e.node.mu.Lock()
	e.node.stalls = map[string]string{}
	e.node.mu.Unlock()

	rec, err := run(t, nil, "stall", "show", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stall status: Invalid, stall not found (E_KIOSK_NOT_FOUND)")
	require.True(t, rec.HasMessage("kiosk stall clear"))
}

func TestStallResolve(t *testing.T) {
	e := setup(t)
	hash := "0x" + "ab"
	e.node.addTx(&common.Transaction{
		Type:    "user_transaction",
		Hash:    hash,
		Version: "7",
		Sender:  e.owner.Hex(),
		Success: true,
		Payload: common.NewEntryFunctionPayload("0x42::marketplace::create_stall", nil, "old-shop"),
	})

	rec, err := run(t, nil, "stall", "resolve", hash, "--remember")
	require.NoError(t, err)
	derived, err := common.DeriveResourceAddress(e.owner.Hex(), "old-shop")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stall address: "+derived.Hex())
	require.Contains(t, rec.KeyValues(), "Source: derived")

	rec, err = run(t, nil, "stall", "show", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stored seed: old-shop")

	_, err = run(t, nil, "stall", "resolve", "0xdead")
	require.Error(t, err)
}

func TestListListingAndBuy(t *testing.T) {
	e := setup(t)
	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)

	_, err = run(t, nil, "list", "0xb0", "1.5", "--from", "alice")
	require.NoError(t, err)
	sent := e.node.lastSubmitted()
	require.Equal(t, moduleFunction("list_item"), sent.Payload.Function)
	require.Equal(t, []string{marketplace.ObjectCoreType}, sent.Payload.TypeArguments)
	require.Equal(t, "150000000", sent.Payload.Arguments[2])

	rec, err := run(t, nil, "listing", "0xb0", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Price: 150,000,000 octas (1.5 APT)")

	rec, err = run(t, []string{"y"}, "buy", "0xb0", "--from", "alice")
	require.NoError(t, err)
	require.True(t, rec.HasMessage("for 150,000,000 octas (1.5 APT)"))
	sent = e.node.lastSubmitted()
	require.Equal(t, moduleFunction("buy"), sent.Payload.Function)
	require.Equal(t, "150000000", sent.Payload.Arguments[2])

	rec, err = run(t, nil, "listing", "0xb0", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Price: not listed")

	_, err = run(t, nil, "buy", "0xb0", "--from", "alice")
	explained := &marketplace.Explained{}
	require.True(t, errors.As(err, &explained))
	require.Equal(t, "Item Not Available", explained.Title)
}

func TestBuyFromMissingStall(t *testing.T) {
	e := setup(t)
	e.node.revertWith = "Move abort in 0x42::marketplace: E_KIOSK_NOT_FOUND(0x60001)"

	_, err := run(t, nil, "buy", "0xb0", "1", "--stall", "0xdead", "--from", "alice", "--yes")
	explained := &marketplace.Explained{}
	require.True(t, errors.As(err, &explained))
	require.Equal(t, "Stall Not Found", explained.Title)
	require.Equal(t, "The stall was not found. The item may have been removed.", explained.Message)
}

func TestListWithoutStall(t *testing.T) {
	setup(t)
	_, err := run(t, nil, "list", "0xb0", "1", "--from", "alice")
	require.ErrorIs(t, err, stall.ErrNoStall)

	_, err = run(t, nil, "list", "0xb0", "1.123456789", "--from", "alice")
	require.Error(t, err)
}

func TestBalance(t *testing.T) {
	setup(t)
	rec, err := run(t, nil, "balance", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Balance: 12,345 octas (0.00012345 APT)")
}

func TestAccounts(t *testing.T) {
	e := setup(t)

	rec, err := run(t, nil, "acc", "list")
	require.NoError(t, err)
	require.Equal(t, []ui.Entry{{Method: "Table", Value: "1 | " + e.owner.Hex() + " | alice | -"}}, rec.Entries())

	_, err = run(t, nil, "acc", "new", "bob")
	require.NoError(t, err)
	rec, err = run(t, nil, "acc", "list", "--json")
	require.NoError(t, err)
	require.Contains(t, rec.Output(), `"Desc":"bob"`)

	_, err = run(t, nil, "stall", "create", "--from", "nobody-matches-this")
	require.Error(t, err)
	_, err = run(t, nil, "stall", "create")
	require.ErrorIs(t, err, errNoFrom)
}

func TestSQLiteStore(t *testing.T) {
	setup(t)
	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice", "--store", "sqlite")
	require.NoError(t, err)

	rec, err := run(t, nil, "stall", "show", "--from", "alice", "--store", "sqlite")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stored seed: shop")

	rec, err = run(t, nil, "stall", "show", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Stall status: No stall created")
}

func TestNamedAddresses(t *testing.T) {
	e := setup(t)
	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)
	_, err = run(t, nil, "addr", "add", "0xb0", "gold", "sword")
	require.NoError(t, err)

	rec, err := run(t, nil, "list", "gold sword", "2", "--from", "alice")
	require.NoError(t, err)
	require.True(t, rec.HasMessage("gold sword"))
	sent := e.node.lastSubmitted()
	require.Equal(t, common.MustParseAddress("0xb0").Hex(), sent.Payload.Arguments[1])

	rec, err = run(t, nil, "addr", "find", "sword")
	require.NoError(t, err)
	require.Equal(t, "Table", rec.Entries()[0].Method)
	require.Contains(t, rec.Entries()[0].Value, "gold sword | "+common.MustParseAddress("0xb0").Hex())

	rec, err = run(t, nil, "addr", "list", "--json")
	require.NoError(t, err)
	require.Contains(t, rec.Output(), `"desc":"gold sword"`)

	_, err = run(t, nil, "listing", "not-a-name-at-all", "--from", "alice")
	require.ErrorIs(t, err, common.ErrInvalidAddress)
}

func TestHexLikeNameWinsOverShortHex(t *testing.T) {
	e := setup(t)
	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)
	_, err = run(t, nil, "addr", "add", "0xb0", "cafe")
	require.NoError(t, err)

	rec, err := run(t, nil, "list", "cafe", "2", "--from", "alice")
	require.NoError(t, err)
	require.True(t, rec.HasMessage("(cafe)"))
	require.Equal(t, common.MustParseAddress("0xb0").Hex(), e.node.lastSubmitted().Payload.Arguments[1])

	// with the prefix it is an address, whatever the names say
	_, err = run(t, nil, "list", "0xcafe", "2", "--from", "alice")
	require.NoError(t, err)
	require.Equal(t, common.MustParseAddress("0xcafe").Hex(), e.node.lastSubmitted().Payload.Arguments[1])

	// short hex nobody named is still read as an address
	_, err = run(t, nil, "list", "beef", "2", "--from", "alice")
	require.NoError(t, err)
	require.Equal(t, common.MustParseAddress("0xbeef").Hex(), e.node.lastSubmitted().Payload.Arguments[1])
}

func TestTx(t *testing.T) {
	e := setup(t)
	hash := "0x" + "cd"
	e.node.addTx(&common.Transaction{
		Type:     "user_transaction",
		Hash:     hash,
		Version:  "9",
		Sender:   e.owner.Hex(),
		Success:  true,
		VMStatus: "Executed successfully",
		Payload:  common.NewEntryFunctionPayload("0x42::marketplace::create_stall", nil, "shop"),
		Events: []common.Event{{
			Type: "0x42::marketplace::StallCreated",
			Data: map[string]any{"stall_addr": "0xe1"},
		}},
	})

	rec, err := run(t, nil, "tx", hash)
	require.NoError(t, err)
	stallAddr := common.MustParseAddress("0xe1").Hex()
	require.True(t, rec.HasMessage("Sender | "+e.owner.Hex()+" (alice)"))
	require.True(t, rec.HasMessage("seed (string) | shop"))
	require.True(t, rec.HasMessage("Stall: "+stallAddr+" (event_data)"))

	rec, err = run(t, nil, "tx", hash, "--json")
	require.NoError(t, err)
	res := txanalyzer.TxResult{}
	require.NoError(t, json.Unmarshal([]byte(rec.Output()), &res))
	require.True(t, res.Marketplace)
	require.Equal(t, stallAddr, res.Stall.Address)

	rec, err = run(t, nil, "tx", "0xdead")
	require.NoError(t, err)
	require.Equal(t, []string{"tx is notfound"}, rec.ErrorMessages())
}

func TestDegradedWarning(t *testing.T) {
	require.Empty(t, degradedWarning(stall.SourceEventData))
	require.Empty(t, degradedWarning(stall.SourceDerived))
	require.Contains(t, degradedWarning(stall.SourceFallbackOwner), "fell back to the owner address")
	require.NotContains(t, degradedWarning(stall.SourceUnknown), "fell back")
	require.Contains(t, degradedWarning(stall.SourceUnknown), "without its source")
}

func TestStallShowWarnsUnknownSource(t *testing.T) {
	e := setup(t)
	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)

	rec, err := run(t, nil, "stall", "show", "--from", "alice")
	require.NoError(t, err)
	require.Empty(t, rec.WarnMessages())

	// a record stored before the source was tracked
	store := cache.NewFileStore(filepath.Join(e.home, "cache.json"))
	require.NoError(t, store.Remove(stall.SourceKey(e.owner)))

	rec, err = run(t, nil, "stall", "show", "--from", "alice")
	require.NoError(t, err)
	require.Contains(t, rec.KeyValues(), "Source: unknown")
	require.Len(t, rec.WarnMessages(), 1)
	require.Contains(t, rec.WarnMessages()[0], "without its source")
	require.NotContains(t, rec.WarnMessages()[0], "fell back")
}

func TestRefusesTamperedEncoding(t *testing.T) {
	e := setup(t)
	e.node.tamper = "0x0102"

	_, err := run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.ErrorIs(t, err, marketplace.ErrEncodingMismatch)
	explained := &marketplace.Explained{}
	require.True(t, errors.As(err, &explained))
	require.Equal(t, "Encoding Mismatch", explained.Title)
	require.Nil(t, e.node.lastSubmitted(), "nothing is signed or submitted")

	e.node.tamper = ""
	_, err = run(t, nil, "stall", "create", "shop", "--from", "alice")
	require.NoError(t, err)
	require.NotNil(t, e.node.lastSubmitted())
}

func tableRows(rec *ui.RecordingUI) []string {
	var rows []string
	for _, e := range rec.Entries() {
		if e.Method == "Table" {
			rows = append(rows, e.Value)
		}
	}
	return rows
}

func TestNFTMintAndAssets(t *testing.T) {
	e := setup(t)

	rec, err := run(t, nil, "assets", "--from", "alice")
	require.NoError(t, err)
	require.True(t, rec.HasMessage("No digital assets found"))

	_, err = run(t, nil, "nft", "mint", "sword", "--from", "alice")
	require.ErrorIs(t, err, marketplace.ErrTxReverted)

	_, err = run(t, nil, "nft", "collection", "--from", "alice")
	require.NoError(t, err)
	rec, err = run(t, nil, "nft", "mint", "sword", "--from", "alice")
	require.NoError(t, err)
	require.True(t, rec.HasMessage("kiosk assets "+e.owner.Hex()))

	sent := e.node.lastSubmitted()
	require.Equal(t, common.MustParseAddress("0x42").ShortString()+"::test_nft::create_test_nft", sent.Payload.Function)
	require.Equal(t, []any{"sword", "A test NFT for marketplace testing", defaultNFTURI, e.owner.Hex()}, sent.Payload.Arguments)

	token := common.DeriveObjectAddress(e.owner, []byte("Test NFT Collection::sword")).Hex()
	rec, err = run(t, nil, "assets", "--from", "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"1 | sword | 0xc011 | " + common.TruncateAddress(token, 10, 8) + " | indexer"}, tableRows(rec))

	rec, err = run(t, nil, "assets", "alice", "--full")
	require.NoError(t, err)
	require.Equal(t, []string{"1 | sword | 0xc011 | " + token + " | indexer"}, tableRows(rec))

	rec, err = run(t, nil, "assets", "--from", "alice", "--json")
	require.NoError(t, err)
	got := []marketplace.OwnedAsset{}
	require.NoError(t, json.Unmarshal([]byte(rec.Output()), &got))
	require.Len(t, got, 1)
	require.Equal(t, token, got[0].Address)
	require.Equal(t, "sword", got[0].Name)
	require.Equal(t, defaultNFTURI, got[0].URI)
	require.Equal(t, marketplace.AssetSourceIndexer, got[0].Source)
}

func TestWait(t *testing.T) {
	e := setup(t)
	lostAfter = 20 * time.Millisecond
	e.node.addTx(&common.Transaction{Type: "user_transaction", Hash: "0xaa", Version: "7", Sender: e.owner.Hex(), Success: true})
	e.node.addTx(&common.Transaction{Type: "user_transaction", Hash: "0xbb", Version: "8", Sender: e.owner.Hex(), VMStatus: "Move abort"})

	rec, err := run(t, nil, "wait", "0xaa", "0xbb", "0xcc")
	require.NoError(t, err)
	require.Equal(t, []string{
		"1 | 0xaa | done | 7",
		"2 | 0xbb | reverted | 8",
		"3 | 0xcc | lost | 0",
	}, tableRows(rec))
	require.Equal(t, []string{"2 of 3 txs did not succeed."}, rec.WarnMessages())

	rec, err = run(t, nil, "wait", "0xaa", "--json")
	require.NoError(t, err)
	got := []waitResult{}
	require.NoError(t, json.Unmarshal([]byte(rec.Output()), &got))
	require.Equal(t, []waitResult{{Hash: "0xaa", Status: common.TxStatusDone, Version: 7}}, got)
}
