package util

import "github.com/tranvictor/kiosk/ui"

// ParamDisplay is the human-readable view-model for one entry function
// argument or event field. Value is a StyledText: JSON sees the plain text
// while the Severity drives terminal colouring via u.Style.
type ParamDisplay struct {
	Name  string        `json:"name"`
	Type  string        `json:"type"`
	Value ui.StyledText `json:"value"` // serializes as string
}

// EventDisplay is the human-readable view-model for one emitted event.
type EventDisplay struct {
	Name string         `json:"name"`
	Type string         `json:"type"`
	Data []ParamDisplay `json:"data"`
}

// StallDisplay is where a create_stall transaction put the stall.
type StallDisplay struct {
	Address ui.StyledText `json:"address"`
	Source  string        `json:"source"`
}

// TxDisplay is the complete view-model for one analyzed transaction.
type TxDisplay struct {
	Hash           string        `json:"hash,omitempty"`
	Status         string        `json:"status"`
	Sender         ui.StyledText `json:"sender"`
	Version        string        `json:"version,omitempty"`
	SequenceNumber string        `json:"sequence_number,omitempty"`
	GasUsed        string        `json:"gas_used,omitempty"`
	VMStatus       string        `json:"vm_status,omitempty"`

	Function string         `json:"function,omitempty"`
	Method   string         `json:"method,omitempty"`
	Params   []ParamDisplay `json:"params,omitempty"`
	Events   []EventDisplay `json:"events,omitempty"`
	Stall    *StallDisplay  `json:"stall,omitempty"`
	Error    string         `json:"error,omitempty"`
}
