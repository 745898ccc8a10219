package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
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

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case PlayerList:
		o.printPlayerList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type
type Player struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Position    string     `json:"position"`
	Nationality string     `json:"nationality"`
	Age         int        `json:"age"`
	Rating      int        `json:"rating"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// PlayerList is a page of players plus the unfiltered total
type PlayerList struct {
	Total   int      `json:"total"`
	Players []Player `json:"players"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "ID:          %s\n", p.ID)
	fmt.Fprintf(o.w, "Name:        %s\n", p.Name)
	fmt.Fprintf(o.w, "Position:    %s\n", p.Position)
	fmt.Fprintf(o.w, "Nationality: %s\n", p.Nationality)
	fmt.Fprintf(o.w, "Age:         %d\n", p.Age)
	fmt.Fprintf(o.w, "Rating:      %d\n", p.Rating)
	if p.CreatedAt != nil {
		fmt.Fprintf(o.w, "Created:     %s\n", p.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printPlayerList(l PlayerList) {
	if len(l.Players) == 0 {
		fmt.Fprintf(o.w, "No matching players (%d total)\n", l.Total)
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tNATIONALITY\tAGE\tRATING")
	for _, p := range l.Players {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", p.ID, p.Name, p.Position, p.Nationality, p.Age, p.Rating)
	}
	_ = tw.Flush()

	fmt.Fprintf(o.w, "\nShowing %d of %d players\n", len(l.Players), l.Total)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
