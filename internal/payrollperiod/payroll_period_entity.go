package payrollperiod

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusOpen      = "OPEN"
	StatusProcessed = "PROCESSED"
	StatusClosed    = "CLOSED"
)

// Event status lifecycle periode
const (
	EventProcess = "process"
	EventClose   = "close"
)

// transitions memetakan {status, event} -> status berikutnya. Transisi yang
// tidak ada di tabel ini ilegal; status hanya bergerak maju.
var transitions = map[string]map[string]string{
	StatusOpen: {
		EventProcess: StatusProcessed,
		EventClose:   StatusClosed,
	},
	StatusProcessed: {
		EventClose: StatusClosed,
	},
}

// NextStatus mengembalikan status tujuan untuk event, atau false bila
// transisi tidak diizinkan.
func NextStatus(current, event string) (string, bool) {
	evs, ok := transitions[current]
	if !ok {
		return "", false
	}
	next, ok := evs[event]
	return next, ok
}

type PayrollPeriod struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_period_company_branch_code,unique"`
	BranchID   uuid.UUID `gorm:"type:uuid;not null;index:idx_period_company_branch_code,unique"`
	PeriodCode string    `gorm:"type:varchar(30);not null;index:idx_period_company_branch_code,unique"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'OPEN';index"`

	CreatedBy uuid.UUID  `gorm:"type:uuid;not null"`
	ClosedBy  *uuid.UUID `gorm:"type:uuid"`
	ClosedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PayrollPeriod) TableName() string {
	return "payroll_periods"
}
