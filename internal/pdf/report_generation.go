package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"courtbook/internal/models"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	GenerateReservationsReport(data ReportData) (string, error)
}

// ReportGenerator — реализация
type ReportGenerator struct {
	RootDir  string // корень хранения, например "./files"
	FontPath string // путь до TTF, например "assets/fonts/DejaVuSans.ttf"
	fontName string
}

type ReportData struct {
	GeneratedAt  time.Time
	Summary      *models.ReservationSummary
	Reservations []*models.Reservation
	Filename     string // имя файла (без путей); если пусто — сгенерируем
}

func NewReportGenerator(rootDir, fontPath string) *ReportGenerator {
	return &ReportGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
}

func (g *ReportGenerator) GenerateReservationsReport(data ReportData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("reservations_%s.pdf", data.GeneratedAt.Format("2006-01-02_1504"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	g.addUTF8Font(pdf)
	pdf.SetFont(g.fontName, "", 14)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.SetY(20)
	title := "Court Reservations Report"
	center := (210 - pdf.GetStringWidth(title)) / 2
	if center < 10 {
		center = 10
	}
	pdf.SetX(center)
	pdf.Cell(40, 10, title)
	pdf.Ln(16)

	g.kvLine(pdf, "Generated", data.GeneratedAt.Format("02.01.2006 15:04"))
	if data.Summary != nil {
		g.kvLine(pdf, "Total reservations", fmt.Sprintf("%d", data.Summary.TotalReservations))
	}
	g.hr(pdf)

	if data.Summary != nil && len(data.Summary.TopUsers) > 0 {
		g.sectionTitle(pdf, "Top users")
		for _, row := range data.Summary.TopUsers {
			g.kvLine(pdf, row.FullName, fmt.Sprintf("%d", row.Count))
		}
		g.hr(pdf)
	}

	if data.Summary != nil && len(data.Summary.PopularSlots) > 0 {
		g.sectionTitle(pdf, "Popular slots")
		for _, row := range data.Summary.PopularSlots {
			g.kvLine(pdf, row.TimeSlot, fmt.Sprintf("%d", row.Count))
		}
		g.hr(pdf)
	}

	g.sectionTitle(pdf, "All reservations")
	pdf.SetFont(g.fontName, "", 11)
	for _, res := range data.Reservations {
		line := fmt.Sprintf("%s  %s  %s", res.Date.Format("02.01.2006"), res.TimeSlot, res.UserName)
		pdf.SetX(20)
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}

	// ===== Нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("%d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ===== helpers =====

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(60, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // безопасность
	return filepath.Join(g.RootDir, filename), nil
}

func (g *ReportGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}
