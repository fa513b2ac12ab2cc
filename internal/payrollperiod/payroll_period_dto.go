package payrollperiod

type CreatePayrollPeriodRequest struct {
	BranchID   string `json:"branch_id" binding:"required,uuid"`
	PeriodCode string `json:"period_code" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

type UpdatePayrollPeriodRequest struct {
	PeriodCode string `json:"period_code" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

type PayrollPeriodResponse struct {
	ID         string  `json:"id"`
	CompanyID  string  `json:"company_id"`
	BranchID   string  `json:"branch_id"`
	PeriodCode string  `json:"period_code"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Status     string  `json:"status"`
	CreatedBy  string  `json:"created_by"`
	ClosedBy   *string `json:"closed_by,omitempty"`
	ClosedAt   *string `json:"closed_at,omitempty"`
}
