package payrollevidence

type EvidenceResponse struct {
	RunID       string    `json:"run_id"`
	RunNo       string    `json:"run_no"`
	RunStatus   string    `json:"run_status"`
	LineID      string    `json:"line_id"`
	EmployeeID  string    `json:"employee_id"`
	PeriodID    string    `json:"period_id"`
	PeriodCode  string    `json:"period_code"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	BaseSalary  int64     `json:"base_salary"`
	Breakdown   Breakdown `json:"breakdown"`
}
