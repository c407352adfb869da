// Package config holds the settings of the current command. Flags write
// straight into these vars, values from the config file fill in whatever
// no flag set.
package config

import (
	"github.com/tranvictor/kiosk/accounts"
)

var Network string

var (
	ModuleAddress string
	From          string
	FromAcc       accounts.AccDesc
	StoreKind     string
	StoreDir      string
	MaxGasAmount  uint64
	GasUnitPrice  uint64
	Verbose       bool
	JSONOutput    bool
)

const (
	DefaultNetwork       = "devnet"
	DefaultModuleAddress = "0x42"
	DefaultStoreKind     = "file"

	ModuleAddressEnv = "KIOSK_MODULE_ADDRESS"
	HomeEnv          = "KIOSK_HOME"
)
