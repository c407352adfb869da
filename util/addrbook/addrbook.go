// Package addrbook labels addresses for display. Commands use [Default],
// built from the local accounts and remembered stalls. Tests use [Map].
package addrbook

import (
	"fmt"
)

const Unknown = "unknown"

// Label is an address in canonical form with a human readable name.
type Label struct {
	Address string `json:"address"`
	Desc    string `json:"desc"`
}

func (l Label) String() string {
	if l.Desc == Unknown {
		return l.Address
	}
	return fmt.Sprintf("%s (%s)", l.Address, l.Desc)
}

// AddressResolver maps an address to a Label. Unknown addresses get Desc
// "unknown".
type AddressResolver interface {
	Resolve(addr string) Label
}
