package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tranvictor/kiosk/common"
)

const (
	AptosCoinType   = "0x1::aptos_coin::AptosCoin"
	CoinBalanceView = "0x1::coin::balance"
)

// AptosReader sends every read to all of its nodes and returns the first
// successful answer.
type AptosReader struct {
	nodes map[string]AptosNode
}

func NewAptosReaderGeneric(nodes map[string]string) *AptosReader {
	ns := map[string]AptosNode{}
	for name, u := range nodes {
		ns[name] = NewOneNodeReader(name, u)
	}
	return NewAptosReaderFromNodes(ns)
}

func NewAptosReaderFromNodes(nodes map[string]AptosNode) *AptosReader {
	return &AptosReader{nodes: nodes}
}

func (ar *AptosReader) Nodes() map[string]AptosNode {
	return ar.nodes
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type nodeResult[T any] struct {
	Value T
	Error error
}

// readFromAll runs read on every node concurrently. accept decides
// whether a successful value ends the race; values it rejects are kept as
// the answer of last resort.
func readFromAll[T any](
	ctx context.Context,
	nodes map[string]AptosNode,
	read func(ctx context.Context, n AptosNode) (T, error),
	accept func(T) bool,
) (T, error) {
	var zero T
	if len(nodes) == 0 {
		return zero, ErrNoNodes
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan nodeResult[T], len(nodes))
	for i := range nodes {
		n := nodes[i]
		go func() {
			v, err := read(ctx, n)
			resCh <- nodeResult[T]{Value: v, Error: wrapError(err, n.NodeName())}
		}()
	}
	errs := []error{}
	var fallback T
	hasFallback := false
	for i := 0; i < len(nodes); i++ {
		result := <-resCh
		if result.Error != nil {
			errs = append(errs, result.Error)
			continue
		}
		if accept == nil || accept(result.Value) {
			return result.Value, nil
		}
		fallback, hasFallback = result.Value, true
	}
	if hasFallback {
		return fallback, nil
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (ar *AptosReader) LedgerInfo(ctx context.Context) (*LedgerInfo, error) {
	return readFromAll(ctx, ar.nodes, func(ctx context.Context, n AptosNode) (*LedgerInfo, error) {
		return n.LedgerInfo(ctx)
	}, nil)
}

func (ar *AptosReader) ChainID(ctx context.Context) (uint8, error) {
	info, err := ar.LedgerInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.ChainID, nil
}

func (ar *AptosReader) Account(ctx context.Context, address string) (*AccountData, error) {
	return readFromAll(ctx, ar.nodes, func(ctx context.Context, n AptosNode) (*AccountData, error) {
		return n.Account(ctx, address)
	}, nil)
}

// SequenceNumber is the sequence number the next transaction of address
// must use.
func (ar *AptosReader) SequenceNumber(ctx context.Context, address string) (uint64, error) {
	acc, err := ar.Account(ctx, address)
	if err != nil {
		return 0, err
	}
	return acc.Sequence()
}

// TransactionByHash prefers a node that knows the transaction over one
// that doesn't, and a committed answer over a pending one.
func (ar *AptosReader) TransactionByHash(ctx context.Context, hash string) (*common.Transaction, error) {
	return readFromAll(ctx, ar.nodes, func(ctx context.Context, n AptosNode) (*common.Transaction, error) {
		return n.TransactionByHash(ctx, hash)
	}, func(tx *common.Transaction) bool {
		return tx != nil && !tx.IsPending()
	})
}

func (ar *AptosReader) TxInfoFromHash(ctx context.Context, hash string) (common.TxInfo, error) {
	tx, err := ar.TransactionByHash(ctx, hash)
	if err != nil {
		return common.TxInfo{Status: common.TxStatusError}, err
	}
	if tx == nil {
		return common.TxInfo{Status: common.TxStatusNotFound}, nil
	}
	if tx.IsPending() {
		return common.TxInfo{Status: common.TxStatusPending, Tx: tx}, nil
	}
	if tx.Success {
		return common.TxInfo{Status: common.TxStatusDone, Tx: tx}, nil
	}
	return common.TxInfo{Status: common.TxStatusReverted, Tx: tx}, nil
}

func (ar *AptosReader) View(ctx context.Context, function string, typeArgs []string, args ...any) ([]json.RawMessage, error) {
	req := common.ViewRequest{Function: function, TypeArguments: typeArgs, Arguments: args}
	return readFromAll(ctx, ar.nodes, func(ctx context.Context, n AptosNode) ([]json.RawMessage, error) {
		return n.View(ctx, req)
	}, nil)
}

func (ar *AptosReader) EncodeSubmission(ctx context.Context, tx *common.RawTransaction) ([]byte, error) {
	return readFromAll(ctx, ar.nodes, func(ctx context.Context, n AptosNode) ([]byte, error) {
		return n.EncodeSubmission(ctx, tx)
	}, nil)
}

func (ar *AptosReader) EstimateGasPrice(ctx context.Context) (uint64, error) {
	return readFromAll(ctx, ar.nodes, func(ctx context.Context, n AptosNode) (uint64, error) {
		return n.EstimateGasPrice(ctx)
	}, nil)
}

func (ar *AptosReader) AccountResources(ctx context.Context, address string) ([]Resource, error) {
	return readFromAll(ctx, ar.nodes, func(ctx context.Context, n AptosNode) ([]Resource, error) {
		return n.AccountResources(ctx, address)
	}, nil)
}

// OwnedDigitalAssets prefers the node whose indexer found the most
// assets, indexers lag behind each other.
func (ar *AptosReader) OwnedDigitalAssets(ctx context.Context, owner string, limit int) ([]DigitalAsset, error) {
	return readFromAll(ctx, ar.nodes, func(ctx context.Context, n AptosNode) ([]DigitalAsset, error) {
		return n.OwnedDigitalAssets(ctx, owner, limit)
	}, func(assets []DigitalAsset) bool {
		return len(assets) > 0
	})
}

// Balance returns the APT balance of address in octas.
func (ar *AptosReader) Balance(ctx context.Context, address string) (uint64, error) {
	addr, err := common.CanonicalAddress(address)
	if err != nil {
		return 0, err
	}
	res, err := ar.View(ctx, CoinBalanceView, []string{AptosCoinType}, addr)
	if err != nil {
		return 0, err
	}
	return ViewU64(res, 0)
}

func viewValue(res []json.RawMessage, i int) (json.RawMessage, error) {
	if i >= len(res) {
		return nil, fmt.Errorf("view returned %d values, wanted value %d", len(res), i)
	}
	return res[i], nil
}

// ViewU64 decodes the i-th view result as a u64, which the node encodes
// as a decimal string.
func ViewU64(res []json.RawMessage, i int) (uint64, error) {
	raw, err := viewValue(res, i)
	if err != nil {
		return 0, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("view value %s is not a u64: %w", raw, err)
	}
	return strconv.ParseUint(s, 10, 64)
}

func ViewBool(res []json.RawMessage, i int) (bool, error) {
	raw, err := viewValue(res, i)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, fmt.Errorf("view value %s is not a bool: %w", raw, err)
	}
	return b, nil
}

func ViewAddress(res []json.RawMessage, i int) (common.Address, error) {
	raw, err := viewValue(res, i)
	if err != nil {
		return common.Address{}, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return common.Address{}, fmt.Errorf("view value %s is not an address: %w", raw, err)
	}
	return common.ParseAddress(s)
}
