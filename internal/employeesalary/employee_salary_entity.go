package employeesalary

import (
	"time"

	"github.com/google/uuid"
)

type EmployeeSalary struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_employee_salary_effective"`
	// Gaji pokok per periode, satuan terkecil (sen)
	BaseSalary    int64     `gorm:"type:bigint;not null"`
	EffectiveDate time.Time `gorm:"type:date;uniqueIndex:uq_employee_salary_effective"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Diisi lewat join ke employees, bukan kolom tabel ini
	EmployeeName string `gorm:"->;-:migration"`
}

func (EmployeeSalary) TableName() string {
	return "employee_salaries"
}
