package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tranvictor/kiosk/accounts"
	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/config"
	"github.com/tranvictor/kiosk/db"
	"github.com/tranvictor/kiosk/marketplace"
	"github.com/tranvictor/kiosk/networks"
	"github.com/tranvictor/kiosk/stall"
	"github.com/tranvictor/kiosk/util/account"
	"github.com/tranvictor/kiosk/util/addrbook"
	"github.com/tranvictor/kiosk/util/broadcaster"
	"github.com/tranvictor/kiosk/util/cache"
	"github.com/tranvictor/kiosk/util/monitor"
	"github.com/tranvictor/kiosk/util/reader"
)

// Replaced in tests.
var (
	nodesFor     = func(n networks.Network) map[string]string { return n.GetNodes() }
	pollInterval = monitor.DefaultPollInterval
	lostAfter    = monitor.DefaultLostAfter
)

// session is everything one command run needs, built from the config
// vars.
type session struct {
	network  networks.Network
	module   marketplace.Module
	logger   *zap.Logger
	store    cache.Store
	closer   io.Closer
	registry *stall.Registry
	book     *accounts.Book
	names    *db.DefaultAddressDatabase
	reader   *reader.AptosReader
}

func namesPath() string {
	return filepath.Join(config.Dir(), "addresses.json")
}

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if config.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openSession() (*session, error) {
	module, err := marketplace.NewModule(config.ModuleAddress)
	if err != nil {
		return nil, err
	}
	store, closer, err := cache.Open(config.StoreKind, config.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the %s store: %w", config.StoreKind, err)
	}
	names, err := db.LoadDefaultAddressDatabase(namesPath())
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	n := networks.CurrentNetwork()
	return &session{
		network:  n,
		module:   module,
		logger:   newLogger(),
		store:    store,
		closer:   closer,
		registry: stall.NewRegistry(store),
		book:     accounts.NewBook(filepath.Join(config.Dir(), "accounts")),
		names:    names,
		reader:   reader.NewAptosReaderGeneric(nodesFor(n)),
	}, nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.closer.Close()
}

var errNoFrom = errors.New("no account selected, use --from or set from in the config file")

// account unlocks the --from account.
func (s *session) account() (*account.Account, error) {
	if config.From == "" {
		return nil, errNoFrom
	}
	ad, err := s.book.GetAccount(config.From)
	if err != nil {
		return nil, err
	}
	config.FromAcc = ad
	return accounts.UnlockAccount(ad)
}

// resolveAddress reads input as a 0x or 64 digit address, then as a name
// in the address book, then as a local account, and last as short hex
// without prefix. Names like "cafe" therefore win over 0x...cafe. What a
// name resolved to is shown to the user.
func (s *session) resolveAddress(input string) (string, error) {
	input = strings.TrimSpace(input)
	if common.IsHexAddress(input) {
		return common.CanonicalAddress(input)
	}
	if named, err := s.names.GetAddress(input); err == nil {
		appUI.Interpret(fmt.Sprintf("%s (%s)", named.Address, named.Desc))
		return named.Address, nil
	}
	if ad, err := s.book.GetAccount(input); err == nil {
		appUI.Interpret(fmt.Sprintf("%s (%s)", ad.Address, ad.Desc))
		return ad.Address, nil
	}
	if addr, err := common.ParseAddress(input); err == nil {
		return addr.Hex(), nil
	}
	return "", fmt.Errorf("'%s' is neither an address nor a known name: %w", input, common.ErrInvalidAddress)
}

// owner is the address stall commands act for: args[0] when given,
// otherwise the --from account.
func (s *session) owner(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return s.resolveAddress(args[0])
	}
	if config.From == "" {
		return "", errNoFrom
	}
	ad, err := s.book.GetAccount(config.From)
	if err != nil {
		return "", err
	}
	return ad.Address, nil
}

func (s *session) client(acc *account.Account) *marketplace.Client {
	opts := []marketplace.ClientOption{
		marketplace.WithClientLogger(s.logger),
		marketplace.WithMaxGasAmount(config.MaxGasAmount),
		marketplace.WithGasUnitPrice(config.GasUnitPrice),
		marketplace.WithChainID(chainIDOf(s.network)),
		marketplace.WithSubmittedHook(func(op marketplace.Op, hash string) {
			if config.JSONOutput {
				return
			}
			appUI.Critical("Broadcasted %s tx: %s", op, hash)
			appUI.Info("%s", s.network.GetExplorerTxURL(hash))
		}),
	}
	return marketplace.NewClient(
		s.module,
		s.reader,
		broadcaster.NewBroadcaster(s.reader.Nodes()),
		monitor.NewTxMonitor(s.reader, pollInterval, lostAfter),
		acc,
		s.registry,
		opts...,
	)
}

// chainIDOf is 0, meaning ask the node, for networks without a fixed id.
func chainIDOf(n networks.Network) uint8 {
	id := n.GetChainID()
	if id > math.MaxUint8 {
		return 0
	}
	return uint8(id)
}

func (s *session) addressBook() addrbook.AddressResolver {
	return addrbook.NewDefault(s.module.Address, s.book, s.registry, s.names.Data)
}

func timeoutFor(n networks.Network) time.Duration {
	return lostAfter + 30*n.GetBlockTime()
}
