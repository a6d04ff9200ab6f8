package bot

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

// printStartupInfo prints the configuration banner
func (m *Monitor) printStartupInfo() {
	t := table.NewWriter()
	t.SetOutputMirror(m.out)
	t.SetTitle("SIGNAL MONITOR")
	t.SetStyle(table.StyleRounded)

	for _, row := range m.cfg.Summary() {
		t.AppendRow(table.Row{row[0], row[1]})
	}
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Data source", m.source.GetName()},
		{"Recovered", fmt.Sprintf("%d records", m.engine.Len())},
		{"Position", m.engine.Position().String()},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(m.out)
}

// formatStatus renders the one-line cycle summary
func formatStatus(r signals.Record, position signals.Position) string {
	snap := r.Indicators
	var b strings.Builder

	fmt.Fprintf(&b, "price=%.2f", snap.Close)
	if snap.Band != nil {
		fmt.Fprintf(&b, " bb=[%.2f %.2f %.2f]", snap.Band.Lower, snap.Band.Middle, snap.Band.Upper)
	}
	if snap.RSI != nil {
		fmt.Fprintf(&b, " rsi=%.2f", *snap.RSI)
	}
	fmt.Fprintf(&b, " signal=%s position=%s", r.Kind, position)
	if r.Kind == signals.KindNeutral {
		fmt.Fprintf(&b, " (%s)", r.Reason)
	}
	return b.String()
}
