package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tranvictor/kiosk/util/account"
)

func newKey(t *testing.T, dir string) string {
	t.Helper()
	path, _, err := account.RandomPrivateKeyFile(dir)
	require.NoError(t, err)
	return path
}

func TestAddAndFindAccounts(t *testing.T) {
	keys := t.TempDir()
	book := NewBook(filepath.Join(t.TempDir(), "accounts"))

	alice, err := book.AddKeyAccount(newKey(t, keys), "alice stall keeper")
	require.NoError(t, err)
	bob, err := book.AddKeyAccount(newKey(t, keys), "bob buyer")
	require.NoError(t, err)

	list, err := book.List()
	require.NoError(t, err)
	require.Equal(t, []AccDesc{alice, bob}, list)

	got, err := book.GetAccount("bob")
	require.NoError(t, err)
	require.Equal(t, bob, got)

	got, err = book.GetAccount("stall keeper")
	require.NoError(t, err)
	require.Equal(t, alice, got)

	got, err = book.GetAccount(alice.Address)
	require.NoError(t, err)
	require.Equal(t, alice, got)

	_, err = book.GetAccount("zzzzqqqq")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUnlockAccount(t *testing.T) {
	book := NewBook(t.TempDir())
	ad, err := book.AddKeyAccount(newKey(t, t.TempDir()), "alice")
	require.NoError(t, err)

	acc, err := UnlockAccount(ad)
	require.NoError(t, err)
	require.Equal(t, ad.Address, acc.AddressHex())

	ad.Address = "0x1"
	_, err = UnlockAccount(ad)
	require.ErrorContains(t, err, "belongs to")

	_, err = UnlockAccount(AccDesc{Kind: "ledger"})
	require.ErrorContains(t, err, "not supported")
}

func TestGetAccountsSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	book := NewBook(dir)
	_, err := book.AddKeyAccount(newKey(t, t.TempDir()), "ok")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0x2.json"), []byte("{"), 0o644))

	accs, err := book.GetAccounts()
	require.Error(t, err)
	require.Len(t, accs, 1)
}
