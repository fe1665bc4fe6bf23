package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"cargofleet/internal/blob"
	"cargofleet/internal/hazard"
	"cargofleet/internal/scenario"
	"cargofleet/pkg/domain"
)

// console prints scenario progress for humans.
type console struct {
	w io.Writer
}

var _ scenario.Reporter = console{}

func (c console) Section(title string) {
	fmt.Fprintf(c.w, "\n%s\n", sectionStyle.Render("== "+title+" =="))
}

func (c console) Done(index int, op, message string) {
	fmt.Fprintln(c.w, successMsg("%s %s", muted(fmt.Sprintf("[%02d %s]", index, op)), message))
}

func (c console) Failed(index int, op string, err error) {
	fmt.Fprintln(c.w, errorMsg("%s %s", muted(fmt.Sprintf("[%02d %s]", index, op)), err))
}

func (c console) Ship(r scenario.ShipReport) {
	lines := r.Lines()
	fmt.Fprintln(c.w, accentStyle.Render(lines[0]))
	for _, line := range lines[1:] {
		fmt.Fprintln(c.w, "  "+line)
	}
}

func (c console) Container(r scenario.ContainerReport) {
	lines := r.Lines()
	fmt.Fprintln(c.w, accentStyle.Render(lines[0]))
	for _, line := range lines[1:] {
		fmt.Fprintln(c.w, "  "+line)
	}
}

func (c console) Inspection(result domain.Result) {
	if len(result.Violations) == 0 {
		fmt.Fprintln(c.w, successMsg("fleet consistent"))
		return
	}
	rows := make([][]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		rows = append(rows, []string{string(v.Severity), v.Rule, string(v.Entity), v.EntityID, v.Message})
	}
	fmt.Fprintln(c.w, warnMsg("%d violation(s)", len(result.Violations)))
	fmt.Fprintln(c.w, renderTable([]string{"SEVERITY", "RULE", "ENTITY", "ID", "MESSAGE"}, rows))
}

func (c console) Exported(objects []blob.Object) {
	for _, obj := range objects {
		fmt.Fprintln(c.w, successMsg("exported %s %s", obj.Key, muted(fmt.Sprintf("(%d bytes)", obj.Size))))
	}
}

// consoleHazards prints each hazard as a coloured alert banner.
type consoleHazards struct {
	w io.Writer
}

func (c consoleHazards) Report(h domain.Hazard) {
	banner := color.New(color.FgHiRed, color.Bold)
	if h.Kind == domain.KindGas {
		banner = color.New(color.FgHiYellow, color.Bold)
	}
	fmt.Fprintf(c.w, "%s %s %s\n", banner.Sprint(hazard.Headline(h.Kind)), color.New(color.FgHiMagenta).Sprint(h.Serial), strings.TrimSpace(h.Message))
}

// printSummary closes a run with step and hazard counts.
func printSummary(w io.Writer, sum scenario.Summary, hazards []domain.Hazard) {
	fmt.Fprintln(w)
	pairs := [][2]string{
		{"Steps", fmt.Sprint(sum.Steps)},
		{"Failed", fmt.Sprint(sum.Failed)},
		{"Hazards", fmt.Sprint(len(hazards))},
	}
	fmt.Fprint(w, keyValues("", pairs))
}
