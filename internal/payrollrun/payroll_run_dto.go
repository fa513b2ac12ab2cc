package payrollrun

type CreatePayrollRunRequest struct {
	PeriodID string `json:"period_id" binding:"required,uuid"`
	// RunNo opsional; kosong berarti digenerate dari counter per company.
	RunNo string `json:"run_no"`
}

type CreateRunLineRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid"`
	Amount     int64   `json:"amount" binding:"gte=0"`
	Note       *string `json:"note"`
}

type UpdateRunLineRequest struct {
	Amount int64   `json:"amount" binding:"gte=0"`
	Note   *string `json:"note"`
}

type PayrollRunLineResponse struct {
	ID         string  `json:"id"`
	RunID      string  `json:"run_id"`
	EmployeeID string  `json:"employee_id"`
	Amount     int64   `json:"amount"`
	Note       *string `json:"note,omitempty"`
}

type PayrollRunResponse struct {
	ID        string                   `json:"id"`
	CompanyID string                   `json:"company_id"`
	PeriodID  string                   `json:"period_id"`
	RunNo     string                   `json:"run_no"`
	Status    string                   `json:"status"`
	CreatedBy string                   `json:"created_by"`
	PostedBy  *string                  `json:"posted_by,omitempty"`
	PostedAt  *string                  `json:"posted_at,omitempty"`
	Lines     []PayrollRunLineResponse `json:"lines,omitempty"`
}

type CalculateResultResponse struct {
	RunID            string `json:"run_id"`
	LinesUpserted    int    `json:"lines_upserted"`
	EmployeesSkipped int    `json:"employees_skipped"`
}
