package common

import (
	"strconv"
	"strings"
)

// Transaction statuses as reported by TxInfo.
const (
	TxStatusError    = "error"
	TxStatusNotFound = "notfound"
	TxStatusPending  = "pending"
	TxStatusDone     = "done"
	TxStatusReverted = "reverted"
	TxStatusLost     = "lost"
)

type EventGUID struct {
	CreationNumber string `json:"creation_number"`
	AccountAddress string `json:"account_address"`
}

// Event is a module event emitted by a committed transaction, e.g.
//
//	{"type": "0x42::marketplace::StallCreated", "data": {"stall_addr": "0x..."}}
type Event struct {
	GUID           *EventGUID     `json:"guid,omitempty"`
	SequenceNumber string         `json:"sequence_number,omitempty"`
	Type           string         `json:"type"`
	Data           map[string]any `json:"data"`
}

// Name returns the last path element of the event type, "StallCreated"
// for "0x42::marketplace::StallCreated".
func (e Event) Name() string {
	if i := strings.LastIndex(e.Type, "::"); i >= 0 {
		return e.Type[i+2:]
	}
	return e.Type
}

// StringField returns data[name] when it is a non empty string.
func (e Event) StringField(name string) (string, bool) {
	if e.Data == nil {
		return "", false
	}
	v, found := e.Data[name]
	if !found {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Transaction is the subset of the node's transaction json this tool reads.
// Pending transactions carry no version, success or events.
type Transaction struct {
	Type           string  `json:"type"`
	Hash           string  `json:"hash"`
	Version        string  `json:"version,omitempty"`
	Sender         string  `json:"sender,omitempty"`
	SequenceNumber string  `json:"sequence_number,omitempty"`
	Success        bool    `json:"success"`
	VMStatus       string  `json:"vm_status,omitempty"`
	GasUsed        string  `json:"gas_used,omitempty"`
	Timestamp      string  `json:"timestamp,omitempty"`
	Events         []Event `json:"events,omitempty"`

	Payload *EntryFunctionPayload `json:"payload,omitempty"`
}

func (tx *Transaction) IsPending() bool {
	return tx.Type == "pending_transaction"
}

// StringArgument returns the i-th payload argument when it is a string.
func (tx *Transaction) StringArgument(i int) (string, bool) {
	if tx.Payload == nil || i >= len(tx.Payload.Arguments) {
		return "", false
	}
	s, ok := tx.Payload.Arguments[i].(string)
	return s, ok
}

func (tx *Transaction) VersionNumber() uint64 {
	v, _ := strconv.ParseUint(tx.Version, 10, 64)
	return v
}

type TxInfo struct {
	Status string
	Tx     *Transaction
}

// Events returns the events of a committed transaction, nil otherwise.
func (ti TxInfo) Events() []Event {
	if ti.Tx == nil {
		return nil
	}
	return ti.Tx.Events
}

func (ti TxInfo) IsFinal() bool {
	return ti.Status == TxStatusDone || ti.Status == TxStatusReverted || ti.Status == TxStatusLost
}
