package reader

import (
	"context"
	"encoding/json"

	"github.com/tranvictor/kiosk/common"
)

type AptosNode interface {
	NodeName() string
	NodeURL() string
	LedgerInfo(ctx context.Context) (*LedgerInfo, error)
	Account(ctx context.Context, address string) (*AccountData, error)
	// TransactionByHash returns a nil tx and no error when the node
	// doesn't know the hash.
	TransactionByHash(ctx context.Context, hash string) (*common.Transaction, error)
	View(ctx context.Context, req common.ViewRequest) ([]json.RawMessage, error)
	EncodeSubmission(ctx context.Context, tx *common.RawTransaction) ([]byte, error)
	SubmitTransaction(ctx context.Context, tx *common.SignedTransaction) (*common.Transaction, error)
	EstimateGasPrice(ctx context.Context) (uint64, error)
	AccountResources(ctx context.Context, address string) ([]Resource, error)
	// OwnedDigitalAssets asks the indexer served next to the node, at
	// <node url>/graphql.
	OwnedDigitalAssets(ctx context.Context, owner string, limit int) ([]DigitalAsset, error)
}
