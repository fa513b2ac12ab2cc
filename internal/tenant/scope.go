package tenant

import "gorm.io/gorm"

// Scope membatasi query gorm ke satu company. Dipakai semua repo
// yang membaca tabel ber-kolom company_id.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
