package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID  `gorm:"type:uuid;index"`
	BranchID       *uuid.UUID `gorm:"type:uuid;index"`
	EmployeeNumber string     `gorm:"type:varchar(30);index:idx_company_number,unique"`
	FullName       string
	Email          string `gorm:"uniqueIndex"`
	Phone          string
	Position       string `gorm:"type:varchar(120)"`
	// Tunjangan tetap per periode, satuan terkecil (sen)
	Allowance        int64     `gorm:"type:bigint;not null;default:0"`
	HireDate         time.Time `gorm:"type:date"`
	EmploymentStatus string    `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
