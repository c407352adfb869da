package stall

import (
	"go.uber.org/zap"

	"github.com/tranvictor/kiosk/common"
)

const (
	// StallCreatedEvent is the name of the event create_stall emits.
	StallCreatedEvent = "StallCreated"
	// StallAddrField is the event data field holding the stall address.
	StallAddrField = "stall_addr"
)

// Resolution is a stall address together with where it came from.
// Address is canonical unless Source is SourceFallbackOwner, in which case
// it is the owner string exactly as given.
type Resolution struct {
	Address string `json:"address"`
	Source  Source `json:"source"`
}

// Resolver picks the stall address after a create_stall transaction.
// It is stateless and safe for concurrent use.
type Resolver struct {
	eventName string
	eventType common.TypeTag
	typed     bool
	logger    *zap.Logger
}

type Option func(*Resolver)

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithEventName overrides the event that carries the stall address. Only
// the last path element of the event type is compared, so "StallCreated"
// matches "0x42::marketplace::StallCreated".
func WithEventName(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.eventName = name
		}
	}
}

// WithEventType only accepts events of exactly this type, e.g.
// "0x42::marketplace::StallCreated". Events of a module with the same
// event name at another address are ignored. The address may be in short
// or long form. A malformed type is ignored and the event name is used.
func WithEventType(eventType string) Option {
	return func(r *Resolver) {
		tag, err := common.ParseTypeTag(eventType)
		if err != nil {
			r.logger.Warn("ignoring malformed stall event type", zap.String("type", eventType), zap.Error(err))
			return
		}
		r.eventType, r.typed = tag, true
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		eventName: StallCreatedEvent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the stall address for a stall created by owner with
// seed. events are the events of the confirmed transaction and may be nil.
// Resolve never fails: when nothing better is available the owner is
// returned with SourceFallbackOwner.
func (r *Resolver) Resolve(owner, seed string, events []common.Event) Resolution {
	if addr, found := r.addressFromEvents(events); found {
		return Resolution{Address: addr.Hex(), Source: SourceEventData}
	}

	derived, err := common.DeriveResourceAddress(owner, seed)
	if err != nil {
		r.logger.Warn("couldn't derive stall address, falling back to owner address",
			zap.String("owner", owner),
			zap.String("seed", seed),
			zap.Error(err),
		)
		return Resolution{Address: owner, Source: SourceFallbackOwner}
	}
	r.logger.Debug("derived stall address",
		zap.String("owner", owner),
		zap.String("seed", seed),
		zap.Stringer("stall", derived),
	)
	return Resolution{Address: derived.Hex(), Source: SourceDerived}
}

// addressFromEvents returns the stall_addr of the first matching event
// whose value parses as an address.
func (r *Resolver) addressFromEvents(events []common.Event) (common.Address, bool) {
	for _, ev := range events {
		if !r.matches(ev) {
			continue
		}
		raw, found := ev.StringField(StallAddrField)
		if !found {
			r.logger.Debug("stall event without address", zap.String("type", ev.Type))
			continue
		}
		addr, err := common.ParseAddress(raw)
		if err != nil {
			r.logger.Warn("ignoring malformed stall address in event",
				zap.String("type", ev.Type),
				zap.String(StallAddrField, raw),
				zap.Error(err),
			)
			continue
		}
		return addr, true
	}
	return common.Address{}, false
}

func (r *Resolver) matches(ev common.Event) bool {
	if !r.typed {
		return ev.Name() == r.eventName
	}
	tag, err := common.ParseTypeTag(ev.Type)
	return err == nil && tag.String() == r.eventType.String()
}
