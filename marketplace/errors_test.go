package marketplace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExplain(t *testing.T) {
	cases := []struct {
		op    Op
		err   string
		title string
	}{
		{OpCreateStall, "Move abort: EACCOUNT_ALREADY_USED", "Seed Already Used"},
		{OpCreateStall, "resource account is a claimed account", "Seed Already Used"},
		{OpListItem, "claimed account", "Error"},
		{OpListItem, "0x1::object: ENO_UNGATED_TRANSFERS: ungated transfers are disabled", "Object Not Transferable"},
		{OpListItem, "E_OBJECT_NOT_TRANSFERABLE(0x5)", "Object Not Transferable"},
		{OpListItem, "E_KIOSK_NOT_FOUND(0x1)", "Stall Not Found"},
		{OpBuy, "E_NOT_LISTED(0x2)", "Item Not Available"},
		{OpBuy, "E_PRICE_MISMATCH(0x3)", "Price Mismatch"},
		{OpBuy, "insufficient balance", "Purchase Failed"},
		{OpCreateStall, "out of gas", "Failed to Create Stall"},
	}
	for _, c := range cases {
		t.Run(c.err, func(t *testing.T) {
			base := errors.New(c.err)
			e := Explain(c.op, fmt.Errorf("submit: %w", base))
			require.Equal(t, c.title, e.Title)
			require.ErrorIs(t, e, base)
		})
	}
}

func TestExplainStallNotFoundDependsOnOp(t *testing.T) {
	err := errors.New("E_KIOSK_NOT_FOUND")
	require.Contains(t, Explain(OpListItem, err).Message, "Your stall")
	require.Contains(t, Explain(OpBuy, err).Message, "may have been removed")
}

func TestExplainKeepsExplained(t *testing.T) {
	e := &Explained{Title: "T", Message: "M"}
	require.Same(t, e, Explain(OpBuy, fmt.Errorf("wrapped: %w", e)))
	require.Nil(t, Explain(OpBuy, nil))
}

func TestTxErrorUnwrapsToReverted(t *testing.T) {
	err := &TxError{Hash: "0x1", VMStatus: "Move abort in 0x42::marketplace: E_NOT_LISTED(0x2)"}
	require.ErrorIs(t, err, ErrTxReverted)
	require.Equal(t, "Item Not Available", Explain(OpBuy, err).Title)
}
