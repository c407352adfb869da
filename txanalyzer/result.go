package txanalyzer

import (
	"github.com/tranvictor/kiosk/stall"
	"github.com/tranvictor/kiosk/util/addrbook"
)

// ParamResult is one decoded argument or event field. Address is set when
// Value is an account address.
type ParamResult struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Value   string          `json:"value"`
	Address *addrbook.Label `json:"address,omitempty"`
}

type EventResult struct {
	Type string        `json:"type"`
	Name string        `json:"name"`
	Data []ParamResult `json:"data"`
}

type TxResult struct {
	Hash           string         `json:"hash"`
	Network        string         `json:"network"`
	Status         string         `json:"status"`
	Sender         addrbook.Label `json:"sender"`
	Version        string         `json:"version,omitempty"`
	SequenceNumber string         `json:"sequence_number,omitempty"`
	GasUsed        string         `json:"gas_used,omitempty"`
	VMStatus       string         `json:"vm_status,omitempty"`

	// Function is the fully qualified entry function, Method its last
	// element. Marketplace is set when the function belongs to the
	// marketplace module.
	Function    string        `json:"function,omitempty"`
	Method      string        `json:"method,omitempty"`
	Marketplace bool          `json:"marketplace"`
	Params      []ParamResult `json:"params,omitempty"`
	Events      []EventResult `json:"events,omitempty"`

	// Stall is where a successful create_stall put the stall.
	Stall *stall.Resolution `json:"stall,omitempty"`

	Completed bool   `json:"completed"`
	Error     string `json:"error,omitempty"`
}

func NewTxResult() *TxResult {
	return &TxResult{
		Params: []ParamResult{},
		Events: []EventResult{},
	}
}
