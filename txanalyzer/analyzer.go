// Package txanalyzer explains a committed transaction in marketplace
// terms: what was called with which arguments, what it emitted and, for
// create_stall, where the stall ended up.
package txanalyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/marketplace"
	"github.com/tranvictor/kiosk/stall"
)

type argDesc struct {
	Name string
	Type string
}

// marketplaceParams names the arguments of the marketplace entry
// functions, in order.
var marketplaceParams = map[string][]argDesc{
	marketplace.CreateStallFunction: {{"seed", "string"}},
	marketplace.ListItemFunction:    {{"stall", "address"}, {"object", "address"}, {"price", "u64"}},
	marketplace.BuyFunction:         {{"stall", "address"}, {"object", "address"}, {"price", "u64"}},
}

type TxAnalyzer struct {
	module   marketplace.Module
	resolver *stall.Resolver
}

func NewTxAnalyzer(module marketplace.Module, resolver *stall.Resolver) *TxAnalyzer {
	if resolver == nil {
		resolver = module.StallResolver()
	}
	return &TxAnalyzer{module: module, resolver: resolver}
}

func (self *TxAnalyzer) setBasicTxInfo(ctx *AnalysisContext, tx *common.Transaction, result *TxResult) {
	result.Hash = tx.Hash
	result.Sender = ctx.Label(tx.Sender)
	result.Version = tx.Version
	result.SequenceNumber = tx.SequenceNumber
	result.GasUsed = tx.GasUsed
	result.VMStatus = tx.VMStatus
}

func (self *TxAnalyzer) paramResult(ctx *AnalysisContext, desc argDesc, value any) ParamResult {
	p := ParamResult{Name: desc.Name, Type: desc.Type, Value: fmt.Sprint(value)}
	switch desc.Type {
	case "address":
		label := ctx.Label(p.Value)
		p.Address = &label
	case "u64":
		if desc.Name == "price" {
			if octas, err := common.ParseOctas(p.Value); err == nil {
				p.Value = common.ReadableOctas(octas)
			}
		}
	}
	return p
}

func (self *TxAnalyzer) analyzePayload(ctx *AnalysisContext, payload *common.EntryFunctionPayload, result *TxResult) {
	if payload == nil {
		return
	}
	result.Function = payload.Function
	if i := strings.LastIndex(payload.Function, "::"); i >= 0 {
		result.Method = payload.Function[i+2:]
	}
	descs, known := marketplaceParams[result.Method]
	_, inModule := self.module.FunctionName(payload.Function)
	result.Marketplace = known && inModule
	for i, arg := range payload.Arguments {
		desc := argDesc{Name: fmt.Sprintf("arg%d", i), Type: guessType(arg)}
		if result.Marketplace && i < len(descs) {
			desc = descs[i]
		}
		result.Params = append(result.Params, self.paramResult(ctx, desc, arg))
	}
}

// guessType tells addresses from other strings for functions outside the
// marketplace module.
func guessType(arg any) string {
	s, ok := arg.(string)
	if !ok {
		return fmt.Sprintf("%T", arg)
	}
	if strings.HasPrefix(s, "0x") {
		if _, err := common.ParseAddress(s); err == nil {
			return "address"
		}
	}
	return "string"
}

func (self *TxAnalyzer) analyzeEvents(ctx *AnalysisContext, events []common.Event, result *TxResult) {
	for _, ev := range events {
		er := EventResult{Type: ev.Type, Name: ev.Name(), Data: []ParamResult{}}
		fields := make([]string, 0, len(ev.Data))
		for name := range ev.Data {
			fields = append(fields, name)
		}
		sort.Strings(fields)
		for _, name := range fields {
			value := ev.Data[name]
			er.Data = append(er.Data, self.paramResult(ctx, argDesc{Name: name, Type: guessType(value)}, value))
		}
		result.Events = append(result.Events, er)
	}
}

// Analyze explains info. A transaction that is not committed yet only
// gets its status.
func (self *TxAnalyzer) Analyze(ctx *AnalysisContext, info common.TxInfo) *TxResult {
	result := NewTxResult()
	result.Status = info.Status
	if ctx.Network != nil {
		result.Network = ctx.Network.GetName()
	}
	if info.Tx == nil {
		result.Error = fmt.Sprintf("tx is %s", info.Status)
		return result
	}
	tx := info.Tx
	self.setBasicTxInfo(ctx, tx, result)
	self.analyzePayload(ctx, tx.Payload, result)
	self.analyzeEvents(ctx, tx.Events, result)

	if result.Marketplace && result.Method == marketplace.CreateStallFunction && info.Status == common.TxStatusDone {
		if seed, ok := tx.StringArgument(0); ok {
			res := self.resolver.Resolve(tx.Sender, seed, tx.Events)
			result.Stall = &res
		}
	}
	result.Completed = info.IsFinal()
	return result
}
