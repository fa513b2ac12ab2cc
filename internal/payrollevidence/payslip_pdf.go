package payrollevidence

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// formatMinor menampilkan nominal satuan terkecil (sen) sebagai rupiah
// dengan dua desimal.
func formatMinor(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sRp %d.%02d", sign, amount/100, amount%100)
}

func renderPayslipPDF(evidence EvidenceResponse, info EmployeeInfo) ([]byte, error) {
	b := evidence.Breakdown

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", info.FullName, info.EmployeeNumber))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Position: %s", info.Position))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Run: %s", evidence.RunNo))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s (%s to %s)", evidence.PeriodCode, evidence.PeriodStart, evidence.PeriodEnd))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Attendance")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Working days: %d", b.WorkingDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Present: %d   Late: %d   Leave: %d   Absent: %d",
		b.PresentDays, b.LateDays, b.LeaveDays, b.AbsentDays))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Base salary: %s", formatMinor(evidence.BaseSalary)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Daily rate: %s", formatMinor(b.DailyRate)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Base pay: %s", formatMinor(b.BasePay)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Allowance: %s", formatMinor(b.Allowance)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deductions")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Absence: %s", formatMinor(b.AbsentDeduction)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Lateness: %s", formatMinor(b.LateDeduction)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Net pay: %s", formatMinor(b.StoredAmount)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
