package txanalyzer

import (
	"github.com/tranvictor/kiosk/networks"
	"github.com/tranvictor/kiosk/util/addrbook"
)

// AnalysisContext is what the analyzer knows about the world outside the
// transaction: the network it ran on and the names of addresses.
type AnalysisContext struct {
	Network  networks.Network
	Resolver addrbook.AddressResolver
}

func NewAnalysisContext(network networks.Network, res addrbook.AddressResolver) *AnalysisContext {
	if res == nil {
		res = addrbook.Map{}
	}
	return &AnalysisContext{Network: network, Resolver: res}
}

// Label resolves addr using the context's AddressResolver.
func (ctx *AnalysisContext) Label(addr string) addrbook.Label {
	return ctx.Resolver.Resolve(addr)
}
