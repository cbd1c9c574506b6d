package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// DateLayout is the day/month/year layout of the usage date column
const DateLayout = "02/01/2006"

// Title is printed above the table
const Title = "Resumo de Custos Azure:"

// Column headers
const (
	HeaderService = "Serviço"
	HeaderCost    = "Custo"
	HeaderDate    = "Data de Uso"
	HeaderType    = "Tipo de Serviço"
)

// Column widths
const (
	serviceWidth = 40
	costWidth    = 15
	dateWidth    = 15
	typeWidth    = 25
	borderWidth  = 80
)

// Row is one line of the report
type Row struct {
	Service      string
	Cost         float64
	UsageDate    time.Time
	ResourceType string
}

// Printer renders rows as a fixed width table
type Printer struct {
	w         io.Writer
	location  *time.Location
	showTotal bool
}

// NewPrinter creates a Printer that formats dates in loc. A nil loc means UTC.
func NewPrinter(w io.Writer, loc *time.Location, showTotal bool) *Printer {
	if loc == nil {
		loc = time.UTC
	}
	return &Printer{w: w, location: loc, showTotal: showTotal}
}

// Print writes the title, header, every row in order and the closing border
func (p *Printer) Print(rows []Row) error {
	var b strings.Builder
	border := strings.Repeat("-", borderWidth)

	b.WriteString("\n" + Title + "\n")
	b.WriteString(border + "\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
		pad(HeaderService, serviceWidth),
		pad(HeaderCost, costWidth),
		pad(HeaderDate, dateWidth),
		pad(HeaderType, typeWidth))
	b.WriteString(border + "\n")

	var total float64
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %-15.2f | %s | %s |\n",
			pad(r.Service, serviceWidth),
			r.Cost,
			pad(r.UsageDate.In(p.location).Format(DateLayout), dateWidth),
			pad(r.ResourceType, typeWidth))
		total += r.Cost
	}
	b.WriteString(border + "\n")

	if p.showTotal {
		fmt.Fprintf(&b, "Total: %.2f\n", total)
	}

	if _, err := io.WriteString(p.w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// pad left aligns s in width terminal cells; longer values are never cut
func pad(s string, width int) string {
	if n := runewidth.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
