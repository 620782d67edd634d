package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"osrs-alching/pkg/refresh"
	"osrs-alching/pkg/report"
	"osrs-alching/pkg/view"
)

// CommandPrefix starts every bot command
const CommandPrefix = "!alch"

const (
	defaultTopRows = 10
	maxTopRows     = 25
)

const (
	colorOK      = 0x00ff00
	colorInfo    = 0x0099ff
	colorWarn    = 0xffaa00
	colorFailure = 0xff0000
)

// Calculator is the part of the refresh orchestrator the bot drives
type Calculator interface {
	Refresh(ctx context.Context) refresh.Outcome
	SetSortKey(key view.SortKey)
	SetShowMembers(show bool)
	View() refresh.ViewState
}

// Command is a parsed "!alch <name> [args...]" message
type Command struct {
	Name string
	Args []string
}

// ParseCommand extracts a command from message content.
// ok is false when the message is not addressed to the bot.
func ParseCommand(content string) (cmd Command, ok bool) {
	parts := strings.Fields(content)
	if len(parts) == 0 || !strings.EqualFold(parts[0], CommandPrefix) {
		return Command{}, false
	}
	if len(parts) == 1 {
		return Command{Name: "top"}, true
	}
	return Command{Name: strings.ToLower(parts[1]), Args: parts[2:]}, true
}

// Response is what the bot sends back for a command
type Response struct {
	Title string
	Body  string
	Color int
	// Table bodies are sent as code blocks instead of an embed
	Table bool
}

// Handler executes commands against a Calculator
type Handler struct {
	calc    Calculator
	started time.Time

	mu          sync.Mutex
	commands    int64
	lastCommand time.Time
}

// NewHandler creates a command handler
func NewHandler(calc Calculator) *Handler {
	return &Handler{calc: calc, started: time.Now()}
}

// record counts a command and returns the new total with the time of the one before it
func (h *Handler) record() (int64, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	previous := h.lastCommand
	h.commands++
	h.lastCommand = time.Now()
	return h.commands, previous
}

// CommandsHandled returns how many commands have been handled
func (h *Handler) CommandsHandled() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.commands
}

// Handle runs cmd and builds the reply
func (h *Handler) Handle(ctx context.Context, cmd Command) Response {
	count, previous := h.record()

	switch cmd.Name {
	case "top":
		return h.top(cmd.Args)
	case "refresh":
		return h.refresh(ctx)
	case "sort":
		return h.sort(cmd.Args)
	case "members":
		return h.members(cmd.Args)
	case "status":
		return h.status(count, previous)
	case "help":
		return helpResponse()
	case "ping":
		return Response{Title: "🏓 Pong!", Body: "Bot is responsive.", Color: colorOK}
	default:
		return Response{
			Title: "❓ Unknown Command",
			Body:  fmt.Sprintf("Unknown command: `%s`\nUse `%s help` to see available commands.", cmd.Name, CommandPrefix),
			Color: colorWarn,
		}
	}
}

func (h *Handler) top(args []string) Response {
	rows := defaultTopRows
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return Response{
				Title: "❓ Invalid row count",
				Body:  fmt.Sprintf("`%s` is not a positive number.", args[0]),
				Color: colorWarn,
			}
		}
		rows = min(n, maxTopRows)
	}

	vs := h.calc.View()
	return Response{
		Title: "High Alchemy Profits",
		Body:  report.NewOutputFormatter(rows).FormatForDiscord(vs),
		Color: colorOK,
		Table: true,
	}
}

func (h *Handler) refresh(ctx context.Context) Response {
	switch h.calc.Refresh(ctx) {
	case refresh.OutcomeSkipped:
		return Response{Title: "⏳ Refresh in progress", Body: "A refresh is already running. Try again in a moment.", Color: colorInfo}
	case refresh.OutcomeFailed:
		return Response{Title: "❌ Refresh failed", Body: h.calc.View().Error, Color: colorFailure}
	}

	vs := h.calc.View()
	return Response{
		Title: "✅ Prices refreshed",
		Body: fmt.Sprintf("Priced %d of %d items. Nature rune: %d gp.",
			vs.PricedItems, vs.TotalItems, vs.NatureRunePrice),
		Color: colorOK,
	}
}

func (h *Handler) sort(args []string) Response {
	if len(args) == 0 {
		return Response{Title: "❓ Missing column", Body: "Usage: `" + CommandPrefix + " sort <column>`\n" + columnList(), Color: colorWarn}
	}
	key, err := view.ParseSortKey(args[0])
	if err != nil {
		return Response{Title: "❓ Unknown column", Body: fmt.Sprintf("%v\n%s", err, columnList()), Color: colorWarn}
	}

	h.calc.SetSortKey(key)
	spec := h.calc.View().Sort
	return Response{
		Title: "Sort updated",
		Body:  fmt.Sprintf("Sorting by %s%s", spec.Key, report.Indicator(spec, spec.Key)),
		Color: colorOK,
	}
}

func (h *Handler) members(args []string) Response {
	if len(args) == 0 {
		return Response{Title: "❓ Missing value", Body: "Usage: `" + CommandPrefix + " members on|off`", Color: colorWarn}
	}

	var show bool
	switch strings.ToLower(args[0]) {
	case "on", "show", "true", "yes":
		show = true
	case "off", "hide", "false", "no":
		show = false
	default:
		return Response{Title: "❓ Invalid value", Body: fmt.Sprintf("`%s` is not one of on/off.", args[0]), Color: colorWarn}
	}

	h.calc.SetShowMembers(show)
	state := "hidden"
	if show {
		state = "shown"
	}
	return Response{Title: "Members filter updated", Body: "Members-only items are now " + state + ".", Color: colorOK}
}

func (h *Handler) status(commands int64, previous time.Time) Response {
	vs := h.calc.View()

	lastRefresh := "never"
	if !vs.LastRefresh.IsZero() {
		lastRefresh = fmt.Sprintf("%s ago (%s)", time.Since(vs.LastRefresh).Truncate(time.Second), vs.LastOutcome)
	}
	previousCommand := "never"
	if !previous.IsZero() {
		previousCommand = fmt.Sprintf("%s ago", time.Since(previous).Truncate(time.Second))
	}

	body := fmt.Sprintf("%s\n\n"+
		"• Last refresh: %s\n"+
		"• Sort: %s %s\n"+
		"• Commands handled: %d\n"+
		"• Previous command: %s\n"+
		"• Up since: %s\n",
		report.NewOutputFormatter(0).Summary(vs),
		lastRefresh,
		vs.Sort.Key, vs.Sort.Direction,
		commands,
		previousCommand,
		h.started.Format(time.RFC3339))
	if vs.Error != "" {
		body += "\n⚠️ " + vs.Error
	}

	return Response{Title: "🟢 osrs-alching Status", Body: body, Color: colorOK}
}

func helpResponse() Response {
	p := CommandPrefix
	return Response{
		Title: "🔮 osrs-alching Commands",
		Body: "Available commands:\n" +
			"`" + p + " top [n]` - Show the top n rows of the current view\n" +
			"`" + p + " refresh` - Fetch live prices\n" +
			"`" + p + " sort <column>` - Sort by a column, again to flip direction\n" +
			"`" + p + " members on|off` - Show or hide members-only items\n" +
			"`" + p + " status` - Show prices and refresh status\n" +
			"`" + p + " help` - Show this help message\n" +
			"`" + p + " ping` - Test bot responsiveness\n",
		Color: colorInfo,
	}
}

func columnList() string {
	names := make([]string, len(view.Keys))
	for i, k := range view.Keys {
		names[i] = string(k)
	}
	return "Columns: " + strings.Join(names, ", ")
}
