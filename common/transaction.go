package common

import (
	"strconv"
)

const (
	EntryFunctionPayloadType = "entry_function_payload"
	Ed25519SignatureType     = "ed25519_signature"
)

// EntryFunctionPayload calls a public entry function, e.g.
// 0x42::marketplace::list_item. Arguments are json encoded the way the
// node expects them: addresses and u64 as strings.
type EntryFunctionPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
	// ArgumentTypes are the Move types of Arguments, needed to encode the
	// payload locally. The node reads them from the module abi instead.
	ArgumentTypes []string `json:"-"`
}

func NewEntryFunctionPayload(function string, typeArgs []string, args ...any) *EntryFunctionPayload {
	if typeArgs == nil {
		typeArgs = []string{}
	}
	if args == nil {
		args = []any{}
	}
	return &EntryFunctionPayload{
		Type:          EntryFunctionPayloadType,
		Function:      function,
		TypeArguments: typeArgs,
		Arguments:     args,
	}
}

// Typed sets the Move types of the arguments.
func (p *EntryFunctionPayload) Typed(types ...string) *EntryFunctionPayload {
	p.ArgumentTypes = types
	return p
}

// ViewRequest is the body of a view function call.
type ViewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// RawTransaction is an unsigned user transaction in the node's json form.
type RawTransaction struct {
	Sender                  string                `json:"sender"`
	SequenceNumber          string                `json:"sequence_number"`
	MaxGasAmount            string                `json:"max_gas_amount"`
	GasUnitPrice            string                `json:"gas_unit_price"`
	ExpirationTimestampSecs string                `json:"expiration_timestamp_secs"`
	Payload                 *EntryFunctionPayload `json:"payload"`
}

func NewRawTransaction(sender Address, sequence, maxGas, gasPrice uint64, expiration int64, payload *EntryFunctionPayload) *RawTransaction {
	return &RawTransaction{
		Sender:                  sender.Hex(),
		SequenceNumber:          strconv.FormatUint(sequence, 10),
		MaxGasAmount:            strconv.FormatUint(maxGas, 10),
		GasUnitPrice:            strconv.FormatUint(gasPrice, 10),
		ExpirationTimestampSecs: strconv.FormatInt(expiration, 10),
		Payload:                 payload,
	}
}

type Ed25519Signature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// SignedTransaction is what POST /transactions accepts.
type SignedTransaction struct {
	RawTransaction
	Signature *Ed25519Signature `json:"signature"`
}
