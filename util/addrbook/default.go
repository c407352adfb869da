package addrbook

import (
	"github.com/tranvictor/kiosk/accounts"
	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/stall"
)

// Default labels framework addresses, the marketplace module, named
// addresses, local accounts and the stalls remembered for them.
type Default struct {
	table Map
}

// NewDefault reads book and registry once. Either may be nil. names maps
// canonical addresses to the names the user gave them; local accounts win
// over names.
func NewDefault(module common.Address, book *accounts.Book, registry *stall.Registry, names map[string]string) *Default {
	table := Map{
		common.MustParseAddress("0x1").Hex(): "aptos framework",
		common.MustParseAddress("0x3").Hex(): "aptos token",
		common.MustParseAddress("0x4").Hex(): "aptos token objects",
		module.Hex():                         "marketplace module",
	}
	for addr, name := range names {
		table[addr] = name
	}
	if book != nil {
		accs, _ := book.GetAccounts()
		for addr, acc := range accs {
			table[addr] = acc.Desc
			if registry == nil {
				continue
			}
			if rec, found, err := registry.Lookup(addr); err == nil && found {
				if _, taken := table[rec.StallAddress]; !taken {
					table[rec.StallAddress] = "stall of " + acc.Desc
				}
			}
		}
	}
	return &Default{table: table}
}

func (d *Default) Resolve(addr string) Label {
	return d.table.Resolve(addr)
}
