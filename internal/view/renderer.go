// Package view renders a panel's collection and draft to the terminal.
package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"menagerie/cli/internal/catalog"
	"menagerie/cli/internal/record"
)

// Renderer writes panel output to one writer.
type Renderer struct {
	w   io.Writer
	res catalog.Resource
	// header is printed once per mounted panel
	headerShown bool
}

// NewRenderer creates a renderer for res writing to w.
func NewRenderer(w io.Writer, res catalog.Resource) *Renderer {
	return &Renderer{w: w, res: res}
}

// ShowHeader prints the panel title once.
func (r *Renderer) ShowHeader() {
	if r.headerShown {
		return
	}
	r.headerShown = true
	pterm.Fprintln(r.w, pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(plural(r.res)))
	pterm.Fprintln(r.w)
}

// Collection prints the snapshot as a table, or a placeholder when empty.
func (r *Renderer) Collection(records []record.Record) error {
	if len(records) == 0 {
		pterm.Fprintln(r.w, pterm.Gray("No "+strings.ToLower(plural(r.res))+" yet."))
		return nil
	}
	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithData(TableData(r.res.Schema, records)).
		Srender()
	if err != nil {
		return err
	}
	pterm.Fprintln(r.w, out)
	return nil
}

// ListSource reports the state of a panel's collection.
type ListSource interface {
	Len() int
	Loaded() bool
	FetchedAt() time.Time
	RefreshErr() error
}

// Status prints the row count, when the snapshot was taken and whether the
// last reload failed. Before the first successful load there is no count.
func (r *Renderer) Status(src ListSource) {
	name := strings.ToLower(plural(r.res))
	if !src.Loaded() {
		pterm.Fprintln(r.w, pterm.Gray(name+" not loaded yet"))
		if src.RefreshErr() != nil {
			pterm.Fprintln(r.w, pterm.NewStyle(pterm.FgYellow).Sprint("⚠️  Could not load the list; try Refresh"))
		}
		return
	}
	line := fmt.Sprintf("%d %s · fetched %s", src.Len(), name, src.FetchedAt().Format("15:04:05"))
	pterm.Fprintln(r.w, pterm.Gray(line))
	if src.RefreshErr() != nil {
		pterm.Fprintln(r.w, pterm.NewStyle(pterm.FgYellow).Sprint("⚠️  Showing last known list; reload failed"))
	}
}

// Draft prints the form with the draft's current values.
func (r *Renderer) Draft(d record.Draft) {
	pterm.Fprintln(r.w, pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(FormTitle(r.res, d)))
	pterm.Fprint(r.w, FormText(d))
	pterm.Fprintln(r.w)
}

// FormTitle names the form by mode.
func FormTitle(res catalog.Resource, d record.Draft) string {
	if d.Updating() {
		return fmt.Sprintf("Edit %s #%s", singular(res), d.Record().ID())
	}
	return "New " + singular(res)
}

// FormText lists every field with its label and current value. Required text
// fields that are still empty are flagged.
func FormText(d record.Draft) string {
	missing := map[string]bool{}
	for _, name := range d.MissingRequired() {
		missing[name] = true
	}
	width := 0
	for _, f := range d.Schema().Fields {
		width = max(width, len(f.Label))
	}
	var b strings.Builder
	for _, f := range d.Schema().Fields {
		fmt.Fprintf(&b, "  %-*s  %s", width, f.Label, FormatValue(f, d.Record().Get(f.Name)))
		if missing[f.Name] {
			b.WriteString("  (required)")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// TableData builds a header row of labels followed by one row per record.
func TableData(s record.Schema, records []record.Record) pterm.TableData {
	header := []string{"ID"}
	for _, f := range s.Fields {
		header = append(header, f.Label)
	}
	data := pterm.TableData{header}
	for _, r := range records {
		row := []string{r.ID()}
		for _, f := range s.Fields {
			row = append(row, FormatValue(f, r.Get(f.Name)))
		}
		data = append(data, row)
	}
	return data
}

// FormatValue renders one field value for display.
func FormatValue(f record.Field, v any) string {
	switch f.Kind {
	case record.Boolean:
		if b, ok := v.(bool); ok && b {
			return "yes"
		}
		return "no"
	case record.Float:
		if x, ok := v.(float64); ok {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// RowLabel is a one-line description of a record used in selection lists.
func RowLabel(s record.Schema, r record.Record) string {
	parts := []string{"#" + r.ID()}
	for i, f := range s.Fields {
		if i == 2 {
			break
		}
		parts = append(parts, FormatValue(f, r.Get(f.Name)))
	}
	return strings.Join(parts, "  ")
}

func singular(res catalog.Resource) string { return strings.ToLower(res.Title) }

func plural(res catalog.Resource) string { return res.Title + "s" }
