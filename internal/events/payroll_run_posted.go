package events

import "time"

const PayrollRunPostedTopic = "hr.payroll.run.posted.v1"

// PayrollRunPostedEvent dikonsumsi subsistem General Ledger untuk membuat
// jurnal per baris. Payload membawa seluruh amount agar consumer tidak perlu
// membaca ulang tabel payroll.
type PayrollRunPostedEvent struct {
	EventType  string                 `json:"event_type"`
	RunID      string                 `json:"run_id"`
	RunNo      string                 `json:"run_no"`
	PeriodID   string                 `json:"period_id"`
	CompanyID  string                 `json:"company_id"`
	PostedBy   string                 `json:"posted_by"`
	Lines      []PayrollRunPostedLine `json:"lines"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type PayrollRunPostedLine struct {
	LineID     string `json:"line_id"`
	EmployeeID string `json:"employee_id"`
	Amount     int64  `json:"amount"`
}
