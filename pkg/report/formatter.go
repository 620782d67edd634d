package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"osrs-alching/pkg/alch"
	"osrs-alching/pkg/refresh"
	"osrs-alching/pkg/view"
)

// Unavailable is rendered in place of prices and profits for unpriced items
const Unavailable = "N/A"

// ItemURL links to an item's page on the prices wiki
const ItemURL = "https://prices.runescape.wiki/osrs/item/%d"

// Column is one rendered table column
type Column struct {
	Key   view.SortKey
	Title string
}

// Columns are the table columns in display order
var Columns = []Column{
	{view.KeyName, "Item"},
	{view.KeyBuyPrice, "Buy Price"},
	{view.KeyHighAlch, "High Alch"},
	{view.KeyProfit, "Profit"},
	{view.KeyLimit, "Limit"},
	{view.KeyProfitPerMinute, "Profit/minute"},
	{view.KeyProfitPerHour, "Profit/hour"},
	{view.KeyProfitPerLimit, "Profit/limit"},
}

// trendMarks colour the markdown buy price against its 1h average
var trendMarks = map[alch.Trend]string{
	alch.TrendUp:   "🔺 ",
	alch.TrendDown: "🔻 ",
	alch.TrendFlat: "",
}

// OutputFormatter renders a view state for different outputs
type OutputFormatter struct {
	printer *message.Printer
	maxRows int
}

// NewOutputFormatter creates a formatter. maxRows <= 0 renders every row.
func NewOutputFormatter(maxRows int) *OutputFormatter {
	return &OutputFormatter{
		printer: message.NewPrinter(language.English),
		maxRows: maxRows,
	}
}

// Indicator returns the sort glyph for a column header
func Indicator(spec view.SortSpec, key view.SortKey) string {
	if spec.Key != key {
		return " ↕"
	}
	if spec.Direction == view.Asc {
		return " ↑"
	}
	return " ↓"
}

// Number formats n with thousands separators
func (of *OutputFormatter) Number(n int) string {
	return of.printer.Sprintf("%d", n)
}

// BuyPrice renders the buy price with its change against the 1h average, e.g. "1,234 (+12)"
func (of *OutputFormatter) BuyPrice(item alch.EnrichedItem) string {
	if !item.Priced() {
		return Unavailable
	}
	delta := item.PriceDelta()
	sign := ""
	if delta > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s (%s%s)", of.Number(item.BuyPrice), sign, of.Number(delta))
}

// Profit renders a profit figure, or N/A when the item has no price
func (of *OutputFormatter) Profit(item alch.EnrichedItem, value int) string {
	if !item.Priced() {
		return Unavailable
	}
	return of.Number(value)
}

func (of *OutputFormatter) row(item alch.EnrichedItem) []string {
	name := item.Name
	if item.Members {
		name += " (m)"
	}
	return []string{
		name,
		of.BuyPrice(item),
		of.Number(item.HighAlch),
		of.Profit(item, item.Profit),
		of.Number(item.Limit),
		of.Profit(item, item.ProfitPerMinute),
		of.Profit(item, item.ProfitPerHour),
		of.Profit(item, item.ProfitPerLimit),
	}
}

func (of *OutputFormatter) rows(items []alch.EnrichedItem) []alch.EnrichedItem {
	if of.maxRows > 0 && len(items) > of.maxRows {
		return items[:of.maxRows]
	}
	return items
}

func headers(spec view.SortSpec) []string {
	out := make([]string, len(Columns))
	for i, col := range Columns {
		out[i] = col.Title + Indicator(spec, col.Key)
	}
	return out
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// Summary is the one-line status shown above the table
func (of *OutputFormatter) Summary(vs refresh.ViewState) string {
	status := "ready"
	if vs.Loading {
		status = "loading..."
	}
	members := "hidden"
	if vs.ShowMembers {
		members = "shown"
	}
	return fmt.Sprintf("Nature rune: %s gp | Priced: %d/%d | Members items: %s | Status: %s",
		of.Number(vs.NatureRunePrice), vs.PricedItems, vs.TotalItems, members, status)
}

// WriteTerminal renders the view as a table
func (of *OutputFormatter) WriteTerminal(w io.Writer, vs refresh.ViewState) error {
	fmt.Fprintln(w, of.Summary(vs))
	if vs.Error != "" {
		fmt.Fprintf(w, "Note: %s\n", vs.Error)
	}

	table := tablewriter.NewWriter(w)
	table.Header(toAny(headers(vs.Sort))...)
	for _, item := range of.rows(vs.Items) {
		if err := table.Append(toAny(of.row(item))...); err != nil {
			return fmt.Errorf("appending row for item %d: %w", item.ID, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}

	if !vs.PricesFetchedAt.IsZero() {
		fmt.Fprintf(w, "Prices fetched from prices.runescape.wiki at %s\n", vs.PricesFetchedAt.Format(time.RFC3339))
	}
	return nil
}

// FormatForTerminal renders the view as a table string
func (of *OutputFormatter) FormatForTerminal(vs refresh.ViewState) string {
	var sb strings.Builder
	if err := of.WriteTerminal(&sb, vs); err != nil {
		return fmt.Sprintf("failed to render table: %v\n", err)
	}
	return sb.String()
}

// FormatForMarkdown renders the view as a markdown table with item links
func (of *OutputFormatter) FormatForMarkdown(vs refresh.ViewState) string {
	var output strings.Builder

	output.WriteString("# OSRS High Alchemy Profits\n\n")
	output.WriteString(of.Summary(vs) + "\n\n")
	if vs.Error != "" {
		output.WriteString(fmt.Sprintf("> **Note:** %s\n\n", vs.Error))
	}

	hdr := headers(vs.Sort)
	output.WriteString("| " + strings.Join(hdr, " | ") + " |\n")
	output.WriteString("|" + strings.Repeat(" --- |", len(hdr)) + "\n")

	for _, item := range of.rows(vs.Items) {
		cells := of.row(item)
		cells[0] = fmt.Sprintf("[%s]("+ItemURL+")", cells[0], item.ID)
		if item.Priced() {
			cells[1] = trendMarks[item.Trend()] + cells[1]
		}
		output.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	output.WriteString("\nPrices fetched from https://prices.runescape.wiki\n")
	return output.String()
}

// FormatForDiscord renders a compact plain-text list, sent inside code blocks
func (of *OutputFormatter) FormatForDiscord(vs refresh.ViewState) string {
	var output strings.Builder

	output.WriteString(of.Summary(vs) + "\n")
	if vs.Error != "" {
		output.WriteString(fmt.Sprintf("! %s\n", vs.Error))
	}
	output.WriteString(fmt.Sprintf("Sorted by %s%s\n", vs.Sort.Key, Indicator(vs.Sort, vs.Sort.Key)))

	items := of.rows(vs.Items)
	if len(items) == 0 {
		output.WriteString("No items to show.\n")
		return output.String()
	}

	for i, item := range items {
		output.WriteString(fmt.Sprintf("%d. %s buy %s | alch %s | profit %s | /hr %s\n",
			i+1,
			item.Name,
			of.BuyPrice(item),
			of.Number(item.HighAlch),
			of.Profit(item, item.Profit),
			of.Profit(item, item.ProfitPerHour),
		))
	}
	return output.String()
}
