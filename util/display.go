package util

import (
	"fmt"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/stall"
	"github.com/tranvictor/kiosk/txanalyzer"
	"github.com/tranvictor/kiosk/ui"
	"github.com/tranvictor/kiosk/util/addrbook"
)

// ── Severity helpers ─────────────────────────────────────────────────────────

// styledLabel renders a labelled address. Known addresses are Success
// (green), unknown ones Warn (yellow) so they stand out.
func styledLabel(l addrbook.Label) ui.StyledText {
	if l.Desc == "" || l.Desc == addrbook.Unknown {
		return ui.Styled(l.Address+" (unknown)", ui.SeverityWarn)
	}
	return ui.Styled(l.String(), ui.SeveritySuccess)
}

func styledParam(p txanalyzer.ParamResult) ui.StyledText {
	if p.Address != nil {
		return styledLabel(*p.Address)
	}
	return ui.Styled(p.Value, ui.SeverityInfo)
}

func styledStatus(status string) string {
	switch status {
	case common.TxStatusDone:
		return "✓ " + status
	case common.TxStatusReverted, common.TxStatusLost:
		return "✗ " + status
	}
	return status
}

// ── Build phase (pure: no UI side-effects) ──────────────────────────────────

func buildParamDisplay(p txanalyzer.ParamResult) ParamDisplay {
	return ParamDisplay{Name: p.Name, Type: p.Type, Value: styledParam(p)}
}

func buildEventDisplay(ev txanalyzer.EventResult) EventDisplay {
	d := EventDisplay{Name: ev.Name, Type: ev.Type}
	for _, field := range ev.Data {
		d.Data = append(d.Data, buildParamDisplay(field))
	}
	return d
}

func buildStallDisplay(res *stall.Resolution) *StallDisplay {
	if res == nil {
		return nil
	}
	severity := ui.SeveritySuccess
	if res.Source.Degraded() {
		severity = ui.SeverityWarn
	}
	return &StallDisplay{
		Address: ui.Styled(res.Address, severity),
		Source:  res.Source.String(),
	}
}

func buildTxDisplay(result *txanalyzer.TxResult) *TxDisplay {
	d := &TxDisplay{
		Hash:           result.Hash,
		Status:         result.Status,
		Sender:         styledLabel(result.Sender),
		Version:        result.Version,
		SequenceNumber: result.SequenceNumber,
		GasUsed:        result.GasUsed,
		VMStatus:       result.VMStatus,
		Function:       result.Function,
		Method:         result.Method,
		Stall:          buildStallDisplay(result.Stall),
		Error:          result.Error,
	}
	for _, p := range result.Params {
		d.Params = append(d.Params, buildParamDisplay(p))
	}
	for _, ev := range result.Events {
		d.Events = append(d.Events, buildEventDisplay(ev))
	}
	return d
}

// ── Print phase (reads only from the display struct, colours via u.Style) ────

func paramRows(u ui.UI, params []ParamDisplay) [][]string {
	rows := make([][]string, 0, len(params))
	for _, p := range params {
		rows = append(rows, []string{fmt.Sprintf("%s (%s)", p.Name, p.Type), u.Style(p.Value)})
	}
	return rows
}

// printEvents renders all events as one table (Event | Field | Value). The
// event name appears only in the first row of its group.
func printEvents(u ui.UI, events []EventDisplay) {
	if len(events) == 0 {
		return
	}
	u.Section("Events")
	groups := make([][][]string, len(events))
	for i, ev := range events {
		label := fmt.Sprintf("%d. %s", i+1, ev.Name)
		rows := paramRows(u, ev.Data)
		if len(rows) == 0 {
			groups[i] = [][]string{{label, "", ""}}
			continue
		}
		group := make([][]string, len(rows))
		for j, row := range rows {
			name := ""
			if j == 0 {
				name = label
			}
			group[j] = []string{name, row[0], row[1]}
		}
		groups[i] = group
	}
	u.TableWithGroups([]string{"Event", "Field", "Value"}, groups)
}

func printTxDisplay(u ui.UI, d *TxDisplay) {
	summary := [][]string{
		{"Hash", d.Hash},
		{"Status", styledStatus(d.Status)},
	}
	if d.Error != "" {
		u.Table(nil, summary)
		u.Error("%s", d.Error)
		return
	}
	summary = append(summary, []string{"Sender", u.Style(d.Sender)})
	chain := [][]string{
		{"Version", d.Version},
		{"Sequence number", d.SequenceNumber},
		{"Gas used", d.GasUsed},
		{"VM status", d.VMStatus},
	}
	u.TableWithGroups(nil, [][][]string{summary, chain})

	if d.Function == "" {
		u.Info("Not an entry function call.")
		return
	}
	u.Section(fmt.Sprintf("Function call: %s", d.Method))
	meta := [][]string{{"Function", d.Function}}
	if params := paramRows(u, d.Params); len(params) > 0 {
		u.TableWithGroups(nil, [][][]string{meta, params})
	} else {
		u.Table(nil, meta)
	}

	if d.Stall != nil {
		u.Info("Stall: %s (%s)", u.Style(d.Stall.Address), d.Stall.Source)
	}
	printEvents(u, d.Events)
}

// ── Public API ───────────────────────────────────────────────────────────────

// DisplayTxResult builds the human-readable view-model for an analyzed
// transaction and writes it to u. The returned *TxDisplay serializes cleanly
// to JSON; the terminal sees coloured output via u.Style.
func DisplayTxResult(u ui.UI, result *txanalyzer.TxResult) *TxDisplay {
	d := buildTxDisplay(result)
	printTxDisplay(u, d)
	return d
}
