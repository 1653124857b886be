package letter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Fields carries everything the offer letter template needs.
type Fields struct {
	UniversityName   string
	SignatoryName    string
	SignatoryTitle   string
	ApplicantName    string
	Reference        string
	StudentNumber    string
	ProgrammeCode    string
	ProgrammeName    string
	VerificationCode string
	IssuedAt         time.Time
}

// Generator renders admission offer letters as PDF documents.
type Generator struct{}

// NewGenerator constructs a letter generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Render produces the PDF bytes for an offer letter.
func (g *Generator) Render(fields Fields) ([]byte, error) {
	if fields.ApplicantName == "" || fields.StudentNumber == "" {
		return nil, fmt.Errorf("letter requires applicant name and student number")
	}
	if fields.IssuedAt.IsZero() {
		fields.IssuedAt = time.Now().UTC()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fields.UniversityName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "Office of Admissions", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "LETTER OF ADMISSION", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", fields.IssuedAt.Format("2 January 2006")), "", 1, "", false, 0, "")
	pdf.Ln(4)
	pdf.MultiCell(0, 6, fmt.Sprintf("Dear %s,", fields.ApplicantName), "", "", false)
	pdf.Ln(2)

	programme := fields.ProgrammeName
	if programme == "" {
		programme = fields.ProgrammeCode
	}
	body := fmt.Sprintf(
		"We are pleased to inform you that your application (reference %s) has been accepted. "+
			"You have been admitted to the %s programme and assigned the student number below.",
		fields.Reference, programme)
	pdf.MultiCell(0, 6, body, "", "", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(60, 8, "Student Number:", "", 0, "", false, 0, "")
	pdf.CellFormat(0, 8, fields.StudentNumber, "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(60, 6, "Programme:", "", 0, "", false, 0, "")
	pdf.CellFormat(0, 6, programme, "", 1, "", false, 0, "")
	pdf.CellFormat(60, 6, "Application Reference:", "", 0, "", false, 0, "")
	pdf.CellFormat(0, 6, fields.Reference, "", 1, "", false, 0, "")
	pdf.Ln(6)

	pdf.MultiCell(0, 6,
		"Please keep this letter for your records. Enrolment instructions will follow separately.",
		"", "", false)
	pdf.Ln(12)

	pdf.CellFormat(0, 6, fields.SignatoryName, "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fields.SignatoryTitle, "", 1, "", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(0, 4,
		fmt.Sprintf("Verification code: %s. The authenticity of this letter can be confirmed online using this code.",
			fields.VerificationCode),
		"", "", false)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render offer letter: %w", err)
	}
	return buf.Bytes(), nil
}
