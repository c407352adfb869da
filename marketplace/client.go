package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/stall"
	"github.com/tranvictor/kiosk/util/account"
	"github.com/tranvictor/kiosk/util/reader"
)

const (
	DefaultMaxGasAmount uint64 = 20_000
	DefaultGasUnitPrice uint64 = 100
	DefaultExpiration          = 60 * time.Second
)

// ChainReader is the subset of *reader.AptosReader the client needs.
type ChainReader interface {
	ChainID(ctx context.Context) (uint8, error)
	SequenceNumber(ctx context.Context, address string) (uint64, error)
	EstimateGasPrice(ctx context.Context) (uint64, error)
	EncodeSubmission(ctx context.Context, tx *common.RawTransaction) ([]byte, error)
	View(ctx context.Context, function string, typeArgs []string, args ...any) ([]json.RawMessage, error)
	AccountResources(ctx context.Context, address string) ([]reader.Resource, error)
	OwnedDigitalAssets(ctx context.Context, owner string, limit int) ([]reader.DigitalAsset, error)
}

type Broadcaster interface {
	BroadcastTx(ctx context.Context, tx *common.SignedTransaction) (hash string, broadcasted bool, err error)
}

type Waiter interface {
	BlockingWait(ctx context.Context, hash string) (common.TxInfo, error)
}

// Client runs the marketplace flows for one account.
type Client struct {
	module      Module
	reader      ChainReader
	broadcaster Broadcaster
	waiter      Waiter
	account     *account.Account
	registry    *stall.Registry
	resolver    *stall.Resolver
	logger      *zap.Logger

	chainID      uint8
	maxGasAmount uint64
	gasUnitPrice uint64
	expiration   time.Duration
	now          func() time.Time
	onSubmitted  func(op Op, hash string)
}

type ClientOption func(*Client)

func WithClientLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithResolver(r *stall.Resolver) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.resolver = r
		}
	}
}

func WithMaxGasAmount(amount uint64) ClientOption {
	return func(c *Client) {
		if amount > 0 {
			c.maxGasAmount = amount
		}
	}
}

// WithGasUnitPrice skips the node's gas price estimation.
func WithGasUnitPrice(price uint64) ClientOption {
	return func(c *Client) {
		c.gasUnitPrice = price
	}
}

// WithChainID fixes the chain transactions are signed for. Without it,
// or with 0, the node is asked once.
func WithChainID(id uint8) ClientOption {
	return func(c *Client) {
		c.chainID = id
	}
}

// WithSubmittedHook is called with the hash of every transaction right
// after a node accepted it, before waiting for it.
func WithSubmittedHook(fn func(op Op, hash string)) ClientOption {
	return func(c *Client) {
		c.onSubmitted = fn
	}
}

func withClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient returns a client signing with acc. acc may be nil for a read
// only client; flows that submit transactions then fail.
func NewClient(
	module Module,
	r ChainReader,
	b Broadcaster,
	w Waiter,
	acc *account.Account,
	registry *stall.Registry,
	opts ...ClientOption,
) *Client {
	c := &Client{
		module:       module,
		reader:       r,
		broadcaster:  b,
		waiter:       w,
		account:      acc,
		registry:     registry,
		logger:       zap.NewNop(),
		maxGasAmount: DefaultMaxGasAmount,
		expiration:   DefaultExpiration,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		c.resolver = module.StallResolver(stall.WithLogger(c.logger))
	}
	return c
}

func (c *Client) Module() Module {
	return c.module
}

func (c *Client) Account() *account.Account {
	return c.account
}

var ErrNoAccount = errors.New("no account to sign with, use --from")

func (c *Client) chain(ctx context.Context) (uint8, error) {
	if c.chainID != 0 {
		return c.chainID, nil
	}
	id, err := c.reader.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("couldn't get chain id: %w", err)
	}
	c.chainID = id
	return id, nil
}

// signingMessage encodes raw locally and checks the node encodes it to
// the same bytes. The node's answer is never signed as is.
func (c *Client) signingMessage(ctx context.Context, raw *common.RawTransaction) ([]byte, error) {
	chainID, err := c.chain(ctx)
	if err != nil {
		return nil, err
	}
	local, err := common.SigningMessage(raw, chainID)
	if err != nil {
		return nil, err
	}
	remote, err := c.reader.EncodeSubmission(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode tx: %w", err)
	}
	if !bytes.Equal(local, remote) {
		c.logger.Error("node encoded the tx differently, not signing",
			zap.String("function", raw.Payload.Function),
			zap.Uint8("chain_id", chainID),
			zap.String("local", hexutil.Encode(local)),
			zap.String("node", hexutil.Encode(remote)),
		)
		return nil, fmt.Errorf("%s: %w", raw.Payload.Function, ErrEncodingMismatch)
	}
	return local, nil
}

func (c *Client) submit(ctx context.Context, op Op, payload *common.EntryFunctionPayload) (common.TxInfo, error) {
	if c.account == nil {
		return common.TxInfo{}, ErrNoAccount
	}
	sender := c.account.AddressHex()
	seq, err := c.reader.SequenceNumber(ctx, sender)
	if err != nil {
		return common.TxInfo{}, fmt.Errorf("couldn't get sequence number of %s: %w", sender, err)
	}
	gasPrice := c.gasUnitPrice
	if gasPrice == 0 {
		gasPrice, err = c.reader.EstimateGasPrice(ctx)
		if err != nil || gasPrice == 0 {
			c.logger.Debug("using default gas price", zap.Error(err))
			gasPrice = DefaultGasUnitPrice
		}
	}
	raw := common.NewRawTransaction(
		c.account.Address(), seq, c.maxGasAmount, gasPrice,
		c.now().Add(c.expiration).Unix(), payload,
	)
	msg, err := c.signingMessage(ctx, raw)
	if err != nil {
		return common.TxInfo{}, err
	}
	signed, err := c.account.SignTransaction(raw, msg)
	if err != nil {
		return common.TxInfo{}, err
	}
	hash, broadcasted, err := c.broadcaster.BroadcastTx(ctx, signed)
	if !broadcasted {
		return common.TxInfo{}, fmt.Errorf("couldn't broadcast tx: %w", err)
	}
	c.logger.Info("tx submitted",
		zap.String("op", string(op)),
		zap.String("hash", hash),
		zap.String("function", payload.Function),
		zap.Uint64("sequence_number", seq),
	)
	if c.onSubmitted != nil {
		c.onSubmitted(op, hash)
	}

	info, err := c.waiter.BlockingWait(ctx, hash)
	if err != nil {
		return info, fmt.Errorf("stopped waiting for tx %s: %w", hash, err)
	}
	switch info.Status {
	case common.TxStatusDone:
		return info, nil
	case common.TxStatusReverted:
		txErr := &TxError{Hash: hash}
		if info.Tx != nil {
			txErr.VMStatus = info.Tx.VMStatus
		}
		return info, txErr
	default:
		return info, fmt.Errorf("tx %s: %w", hash, ErrTxLost)
	}
}

// CreateStall creates a stall with seed and remembers where it lives.
// A seed equal to the seed of the remembered stall is refused before
// anything is submitted.
func (c *Client) CreateStall(ctx context.Context, seed string) (stall.Record, error) {
	if c.account == nil {
		return stall.Record{}, ErrNoAccount
	}
	owner := c.account.AddressHex()
	if err := c.registry.CheckSeed(owner, seed); err != nil {
		return stall.Record{}, err
	}
	info, err := c.submit(ctx, OpCreateStall, c.module.CreateStallPayload(seed))
	if err != nil {
		return stall.Record{}, err
	}

	res := c.resolver.Resolve(owner, seed, info.Events())
	rec, err := stall.NewRecord(owner, seed, res)
	if err != nil {
		return stall.Record{}, err
	}
	if err := c.registry.Remember(rec); err != nil {
		return rec, fmt.Errorf("stall created at %s but couldn't remember it: %w", rec.StallAddress, err)
	}
	c.logger.Info("stall created",
		zap.String("stall", rec.StallAddress),
		zap.Stringer("source", rec.Source),
	)
	return rec, nil
}

// ListItem lists object in the remembered stall of the account.
func (c *Client) ListItem(ctx context.Context, object string, priceOctas uint64) (common.TxInfo, error) {
	if c.account == nil {
		return common.TxInfo{}, ErrNoAccount
	}
	stallAddr, err := c.MyStall()
	if err != nil {
		return common.TxInfo{}, err
	}
	obj, err := common.ParseAddress(object)
	if err != nil {
		return common.TxInfo{}, fmt.Errorf("object: %w", err)
	}
	return c.submit(ctx, OpListItem, c.module.ListItemPayload(stallAddr, obj, priceOctas))
}

// Buy buys object from stallAddr, or from the remembered stall of the
// account when stallAddr is empty.
func (c *Client) Buy(ctx context.Context, stallAddr, object string, priceOctas uint64) (common.TxInfo, error) {
	target, err := c.stallOrMine(stallAddr)
	if err != nil {
		return common.TxInfo{}, err
	}
	obj, err := common.ParseAddress(object)
	if err != nil {
		return common.TxInfo{}, fmt.Errorf("object: %w", err)
	}
	return c.submit(ctx, OpBuy, c.module.BuyPayload(target, obj, priceOctas))
}

// MyStall returns the remembered stall of the account as an address.
// A fallback record, which holds the owner address, is returned as is.
func (c *Client) MyStall() (common.Address, error) {
	if c.account == nil {
		return common.Address{}, ErrNoAccount
	}
	raw, err := c.registry.StallAddress(c.account.AddressHex())
	if err != nil {
		return common.Address{}, err
	}
	return common.ParseAddress(raw)
}

func (c *Client) stallOrMine(stallAddr string) (common.Address, error) {
	if stallAddr == "" {
		return c.MyStall()
	}
	addr, err := common.ParseAddress(stallAddr)
	if err != nil {
		return common.Address{}, fmt.Errorf("stall: %w", err)
	}
	return addr, nil
}

func (c *Client) StallOwner(ctx context.Context, stallAddr string) (common.Address, error) {
	target, err := c.stallOrMine(stallAddr)
	if err != nil {
		return common.Address{}, err
	}
	res, err := c.reader.View(ctx, c.module.Function(GetStallOwnerView), nil, target.Hex())
	if err != nil {
		return common.Address{}, err
	}
	return reader.ViewAddress(res, 0)
}

func (c *Client) IsListed(ctx context.Context, stallAddr, object string) (bool, error) {
	target, err := c.stallOrMine(stallAddr)
	if err != nil {
		return false, err
	}
	obj, err := common.ParseAddress(object)
	if err != nil {
		return false, fmt.Errorf("object: %w", err)
	}
	res, err := c.reader.View(ctx, c.module.Function(IsListedView), nil, target.Hex(), obj.Hex())
	if err != nil {
		return false, err
	}
	return reader.ViewBool(res, 0)
}

// Price returns the listed price of object in octas.
func (c *Client) Price(ctx context.Context, stallAddr, object string) (uint64, error) {
	target, err := c.stallOrMine(stallAddr)
	if err != nil {
		return 0, err
	}
	obj, err := common.ParseAddress(object)
	if err != nil {
		return 0, fmt.Errorf("object: %w", err)
	}
	res, err := c.reader.View(ctx, c.module.Function(GetPriceView), nil, target.Hex(), obj.Hex())
	if err != nil {
		return 0, err
	}
	return reader.ViewU64(res, 0)
}

// StallStatus describes the remembered stall of an account and whether
// the chain agrees it exists.
type StallStatus struct {
	Account    common.Address `json:"account"`
	Remembered bool           `json:"remembered"`
	Record     stall.Record   `json:"record"`
	// Valid is true when get_stall_owner answers for the remembered
	// address.
	Valid    bool           `json:"valid"`
	Owner    common.Address `json:"owner,omitempty"`
	CheckErr string         `json:"check_error,omitempty"`
}

// StallStatus never fails on chain errors, they make the stall invalid
// and end up in CheckErr.
func (c *Client) StallStatus(ctx context.Context, owner string) (StallStatus, error) {
	rec, found, err := c.registry.Lookup(owner)
	if err != nil {
		return StallStatus{}, err
	}
	ownerAddr, _ := common.ParseAddress(owner)
	st := StallStatus{Account: ownerAddr, Remembered: found, Record: rec}
	if !found {
		return st, nil
	}
	stallOwner, err := c.StallOwner(ctx, rec.StallAddress)
	if err != nil {
		st.CheckErr = err.Error()
		return st, nil
	}
	st.Valid = true
	st.Owner = stallOwner
	return st, nil
}
