package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/mcoot/samuel/internal/config"
	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/inventory"
)

// fallbackWidth is used for truncation when stdout is not a terminal
const fallbackWidth = 80

// minDescriptionWidth keeps truncated descriptions readable on narrow terminals
const minDescriptionWidth = 20

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
	width  int

	header lipgloss.Style
	cell   lipgloss.Style
}

// NewOutput creates a new Output formatter writing results to w and
// diagnostics to errW
func NewOutput(format string, w, errW io.Writer) *Output {
	r := lipgloss.NewRenderer(w)
	return &Output{
		format: format,
		w:      w,
		errW:   errW,
		width:  terminalWidth(w),
		header: r.NewStyle().Bold(true),
		cell:   r.NewStyle(),
	}
}

// GameList is a sorted owned-games listing
type GameList struct {
	Games     []model.Game `json:"games"`
	FetchedAt time.Time    `json:"fetched_at"`
	NoHeader  bool         `json:"-"`
}

// AchievementList is the live achievement state of one game
type AchievementList struct {
	AppID        model.AppID         `json:"appid"`
	Achievements []model.Achievement `json:"achievements"`
	Full         bool                `json:"-"`
}

// resetOutcomeView adds the failure detail model.ResetOutcome keeps out of JSON
type resetOutcomeView struct {
	AchievementID string            `json:"achievement_id"`
	Status        model.ResetStatus `json:"status"`
	Kind          string            `json:"kind,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == config.OutputJSON {
		o.printJSON(toJSON(data))
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	var notFound *inventory.NotFoundError
	errors.As(err, &notFound)

	if o.format == config.OutputJSON {
		body := map[string]any{
			"kind":    model.ErrorKind(err),
			"message": err.Error(),
		}
		if notFound != nil && len(notFound.Suggestions) > 0 {
			body["suggestions"] = notFound.Suggestions
		}
		data, _ := json.Marshal(map[string]any{"error": body})
		fmt.Fprintln(o.errW, string(data))
		return
	}

	fmt.Fprintf(o.errW, "Error: %s\n", err)
	if notFound != nil && len(notFound.Suggestions) > 0 {
		fmt.Fprintf(o.errW, "Did you mean: %s?\n", strings.Join(notFound.Suggestions, ", "))
	}
}

// PrintWarning reports a problem that did not stop the command
func (o *Output) PrintWarning(err error) {
	if o.format == config.OutputJSON {
		data, _ := json.Marshal(map[string]any{
			"warning": map[string]string{
				"kind":    model.ErrorKind(err),
				"message": err.Error(),
			},
		})
		fmt.Fprintln(o.errW, string(data))
	} else {
		fmt.Fprintf(o.errW, "Warning: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == config.OutputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func toJSON(data any) any {
	switch v := data.(type) {
	case *model.ResetReport:
		outcomes := make([]resetOutcomeView, len(v.Outcomes))
		for i, oc := range v.Outcomes {
			outcomes[i] = resetOutcomeView{
				AchievementID: oc.AchievementID,
				Status:        oc.Status,
				Kind:          oc.FailureKind(),
			}
			if oc.Err != nil {
				outcomes[i].Error = oc.Err.Error()
			}
		}
		return map[string]any{"appid": v.AppID, "outcomes": outcomes}
	case GameList:
		if v.Games == nil {
			v.Games = []model.Game{}
		}
		return v
	case AchievementList:
		if v.Achievements == nil {
			v.Achievements = []model.Achievement{}
		}
		return v
	default:
		return data
	}
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case GameList:
		o.printGameList(v)
	case *model.Game:
		o.printGame(v)
	case AchievementList:
		o.printAchievementList(v)
	case *model.Achievement:
		o.printAchievement(v)
	case *model.ResetReport:
		o.printResetReport(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

var gameColumns = []string{"APPID", "NAME", "PLAYTIME (MIN)"}

func gameRow(g model.Game) []string {
	return []string{g.AppID.String(), g.Name, fmt.Sprintf("%d", g.PlaytimeForever)}
}

func (o *Output) printGameList(l GameList) {
	rows := make([][]string, len(l.Games))
	for i, g := range l.Games {
		rows[i] = gameRow(g)
	}
	header := gameColumns
	if l.NoHeader {
		header = nil
	}
	o.printTable(header, rows)
}

func (o *Output) printGame(g *model.Game) {
	o.printTable(nil, [][]string{gameRow(*g)})
}

var achievementColumns = []string{"ID", "STATUS", "NAME", "DESCRIPTION"}

func status(a model.Achievement) string {
	if a.Unlocked {
		return "unlocked"
	}
	return "locked"
}

func (o *Output) printAchievementList(l AchievementList) {
	rows := make([][]string, len(l.Achievements))
	for i, a := range l.Achievements {
		rows[i] = []string{a.ID, status(a), a.Name, a.Description}
	}
	if !l.Full {
		o.truncateLastColumn(achievementColumns, rows)
	}
	o.printTable(achievementColumns, rows)
}

func (o *Output) printAchievement(a *model.Achievement) {
	fmt.Fprintf(o.w, "ID:          %s\n", a.ID)
	fmt.Fprintf(o.w, "Name:        %s\n", a.Name)
	fmt.Fprintf(o.w, "Status:      %s\n", status(*a))
	fmt.Fprintf(o.w, "Description: %s\n", a.Description)
}

func (o *Output) printResetReport(r *model.ResetReport) {
	rows := make([][]string, len(r.Outcomes))
	for i, oc := range r.Outcomes {
		detail := ""
		if oc.Status == model.ResetFailed {
			detail = fmt.Sprintf("%s: %v", oc.FailureKind(), oc.Err)
		}
		rows[i] = []string{oc.AchievementID, string(oc.Status), detail}
	}
	o.printTable(nil, rows)
	fmt.Fprintf(o.w, "%d cleared, %d already locked, %d failed\n",
		r.Count(model.ResetCleared), r.Count(model.ResetAlreadyLocked), r.Count(model.ResetFailed))
}

// printTable left-aligns every column to its widest cell. The last column is
// not padded so lines carry no trailing spaces.
func (o *Output) printTable(header []string, rows [][]string) {
	widths := columnWidths(header, rows)

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			if i < len(cells)-1 {
				parts[i] = style.Width(widths[i]).Render(c)
			} else {
				parts[i] = style.Render(c)
			}
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	if header != nil {
		fmt.Fprintln(o.w, line(header, o.header))
	}
	for _, row := range rows {
		fmt.Fprintln(o.w, line(row, o.cell))
	}
}

// truncateLastColumn cuts the final cell of each row so the table fits the
// terminal width
func (o *Output) truncateLastColumn(header []string, rows [][]string) {
	widths := columnWidths(header, rows)
	used := 0
	for _, w := range widths[:len(widths)-1] {
		used += w + 2
	}

	avail := o.width - used
	if avail < minDescriptionWidth {
		avail = minDescriptionWidth
	}

	last := len(widths) - 1
	for _, row := range rows {
		row[last] = ansi.Truncate(row[last], avail, "...")
	}
}

func columnWidths(header []string, rows [][]string) []int {
	n := len(header)
	for _, row := range rows {
		n = max(n, len(row))
	}
	widths := make([]int, n)
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	return widths
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallbackWidth
}
