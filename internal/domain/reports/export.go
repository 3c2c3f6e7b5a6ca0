package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"friscoplan/internal/domain/roster"
	"friscoplan/internal/domain/vacation"
)

// Row is one line of the vacation plan export, resolved to a worker name
// and sorted by start date.
type Row struct {
	WorkerName string
	Department string
	StartDate  time.Time
	EndDate    time.Time
	Days       int
}

// BuildRows joins vacations with the roster and orders them by start
// date, then by worker name for stable output.
func BuildRows(workers []roster.Worker, vacations []vacation.Vacation) []Row {
	byID := make(map[string]roster.Worker, len(workers))
	for _, w := range workers {
		byID[w.ID] = w
	}

	rows := make([]Row, 0, len(vacations))
	for _, v := range vacations {
		w, ok := byID[v.WorkerID]
		name := w.Name
		if !ok {
			name = "Unbekannt"
		}
		rows = append(rows, Row{
			WorkerName: name,
			Department: w.Department,
			StartDate:  v.StartDate,
			EndDate:    v.EndDate,
			Days:       int(v.EndDate.Sub(v.StartDate).Hours()/24) + 1,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].StartDate.Equal(rows[j].StartDate) {
			return rows[i].StartDate.Before(rows[j].StartDate)
		}
		return rows[i].WorkerName < rows[j].WorkerName
	})
	return rows
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"worker", "department", "startDate", "endDate", "days"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.WorkerName,
			r.Department,
			r.StartDate.Format("2006-01-02"),
			r.EndDate.Format("2006-01-02"),
			fmt.Sprintf("%d", r.Days),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WritePDF(w io.Writer, rows []Row, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Urlaubsplan")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Stand: %s", generatedAt.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 8, "Mitarbeiter", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Abteilung", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Von", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Bis", "1", 0, "L", false, 0, "")
	pdf.CellFormat(15, 8, "Tage", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		pdf.CellFormat(60, 8, r.WorkerName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, r.Department, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, r.StartDate.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, r.EndDate.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 8, fmt.Sprintf("%d", r.Days), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.Cell(0, 8, "Keine Eintraege")
	}

	return pdf.Output(w)
}
