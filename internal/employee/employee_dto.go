package employee

type CreateEmployeeRequest struct {
	BranchID         string `json:"branch_id" binding:"omitempty,uuid"`
	EmployeeNumber   string `json:"employee_number"`
	FullName         string `json:"full_name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone"`
	Position         string `json:"position"`
	Allowance        int64  `json:"allowance" binding:"gte=0"`
	HireDate         string `json:"hire_date" binding:"required"`
	EmploymentStatus string `json:"employment_status" binding:"omitempty,oneof=ACTIVE INACTIVE TERMINATED"`
}

type UpdateEmployeeRequest struct {
	BranchID         string `json:"branch_id" binding:"omitempty,uuid"`
	FullName         string `json:"full_name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone"`
	Position         string `json:"position"`
	Allowance        int64  `json:"allowance" binding:"gte=0"`
	EmploymentStatus string `json:"employment_status" binding:"omitempty,oneof=ACTIVE INACTIVE TERMINATED"`
}

type EmployeeResponse struct {
	ID               string `json:"id"`
	CompanyID        string `json:"company_id"`
	BranchID         string `json:"branch_id,omitempty"`
	EmployeeNumber   string `json:"employee_number"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Position         string `json:"position,omitempty"`
	Allowance        int64  `json:"allowance"`
	HireDate         string `json:"hire_date"`
	EmploymentStatus string `json:"employment_status"`
}
