package addrbook

import (
	"github.com/tranvictor/kiosk/common"
)

// Map resolves from a fixed table keyed by canonical address, for tests.
//
//	r := addrbook.Map{
//	    "0x0000...0001": "aptos framework",
//	}
type Map map[string]string

func (m Map) Resolve(addr string) Label {
	canonical, err := common.CanonicalAddress(addr)
	if err != nil {
		return Label{Address: addr, Desc: Unknown}
	}
	if desc, ok := m[canonical]; ok {
		return Label{Address: canonical, Desc: desc}
	}
	return Label{Address: canonical, Desc: Unknown}
}
