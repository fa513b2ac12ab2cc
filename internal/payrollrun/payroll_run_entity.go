package payrollrun

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft  = "DRAFT"
	StatusPosted = "POSTED"
)

const (
	EventPost = "post"
)

// transitions: satu-satunya jalan maju adalah DRAFT -> POSTED. Cancel bukan
// transisi melainkan penghapusan run DRAFT berikut baris-barisnya.
var transitions = map[string]map[string]string{
	StatusDraft: {
		EventPost: StatusPosted,
	},
}

func NextStatus(current, event string) (string, bool) {
	evs, ok := transitions[current]
	if !ok {
		return "", false
	}
	next, ok := evs[event]
	return next, ok
}

type PayrollRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_run_company_no,unique"`
	PeriodID  uuid.UUID `gorm:"type:uuid;not null;index"`
	RunNo     string    `gorm:"type:varchar(30);not null;index:idx_run_company_no,unique"`
	Status    string    `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	CreatedBy uuid.UUID  `gorm:"type:uuid;not null"`
	PostedBy  *uuid.UUID `gorm:"type:uuid"`
	PostedAt  *time.Time `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Lines []PayrollRunLine `gorm:"foreignKey:RunID"`
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}

type PayrollRunLine struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	RunID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_run_line_employee"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_run_line_employee"`
	// Amount dalam satuan terkecil (sen)
	Amount int64   `gorm:"type:bigint;not null"`
	Note   *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayrollRunLine) TableName() string {
	return "payroll_run_lines"
}
