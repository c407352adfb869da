package marketplace

import (
	"errors"
	"fmt"
	"strings"
)

// Abort names of the marketplace module and the framework that show up
// in vm_status and node error messages.
const (
	AbortStallNotFound          = "E_KIOSK_NOT_FOUND"
	AbortNotListed              = "E_NOT_LISTED"
	AbortPriceMismatch          = "E_PRICE_MISMATCH"
	AbortObjectNotTransferable  = "E_OBJECT_NOT_TRANSFERABLE"
	ungatedTransfersMessage     = "ungated transfers"
	claimedAccountMessage       = "claimed account"
	resourceAccountExistsStatus = "EACCOUNT_ALREADY_USED"
)

var (
	ErrTxLost     = errors.New("transaction was not picked up by any node")
	ErrTxReverted = errors.New("transaction reverted")
	// ErrEncodingMismatch means the node's signing message differs from
	// the one built locally. Nothing was signed.
	ErrEncodingMismatch = errors.New("node and local transaction encodings differ")
)

// Op is the marketplace flow an error happened in. The same abort reads
// differently depending on who hit it.
type Op string

const (
	OpCreateStall Op = "create stall"
	OpListItem    Op = "list item"
	OpBuy         Op = "buy"
	OpView        Op = "view"

	OpCreateCollection Op = "create collection"
	OpMintNFT          Op = "mint nft"
)

// TxError is a committed transaction that failed.
type TxError struct {
	Hash     string
	VMStatus string
}

func (e *TxError) Error() string {
	return fmt.Sprintf("tx %s reverted: %s", e.Hash, e.VMStatus)
}

func (e *TxError) Unwrap() error {
	return ErrTxReverted
}

// Explained is an error with a short title and a message meant for the
// person running the command.
type Explained struct {
	Title   string
	Message string
	Err     error
}

func (e *Explained) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func (e *Explained) Unwrap() error {
	return e.Err
}

// Explain recognizes the known aborts in err and returns an *Explained.
// Unknown errors are wrapped with a generic title and their own message.
func Explain(op Op, err error) *Explained {
	if err == nil {
		return nil
	}
	var explained *Explained
	if errors.As(err, &explained) {
		return explained
	}
	msg := err.Error()
	has := func(s string) bool { return strings.Contains(msg, s) }

	switch {
	case op == OpCreateStall && (has(claimedAccountMessage) || has(resourceAccountExistsStatus)):
		return &Explained{
			Title:   "Seed Already Used",
			Message: "This seed has already been used. Please try a different seed or clear your stall data.",
			Err:     err,
		}
	case has(ungatedTransfersMessage) || has(AbortObjectNotTransferable):
		return &Explained{
			Title:   "Object Not Transferable",
			Message: "This digital asset doesn't support free transfers. Please select an asset that allows ungated transfers.",
			Err:     err,
		}
	case errors.Is(err, ErrEncodingMismatch):
		return &Explained{
			Title:   "Encoding Mismatch",
			Message: "The node encoded the transaction differently than kiosk did, so it was not signed. Check that --network matches the node you are talking to.",
			Err:     err,
		}
	case has(AbortStallNotFound) && op == OpBuy:
		return &Explained{
			Title:   "Stall Not Found",
			Message: "The stall was not found. The item may have been removed.",
			Err:     err,
		}
	case has(AbortStallNotFound):
		return &Explained{
			Title:   "Stall Not Found",
			Message: "Your stall was not found. Please clear stall data and create a new stall.",
			Err:     err,
		}
	case has(AbortNotListed):
		return &Explained{
			Title:   "Item Not Available",
			Message: "This item is no longer listed for sale.",
			Err:     err,
		}
	case has(AbortPriceMismatch):
		return &Explained{
			Title:   "Price Mismatch",
			Message: "The price has changed. Please refresh and try again.",
			Err:     err,
		}
	}

	title := "Error"
	switch op {
	case OpCreateStall:
		title = "Failed to Create Stall"
	case OpBuy:
		title = "Purchase Failed"
	}
	return &Explained{Title: title, Message: msg, Err: err}
}
