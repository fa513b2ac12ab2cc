package payrollevidence

import "time"

// Klasifikasi satu hari kerja dalam periode.
const (
	DayPresent = "PRESENT"
	DayLate    = "LATE"
	DayAbsent  = "ABSENT"
	DayLeave   = "LEAVE"
)

type CalcInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	BaseSalary  int64
	Allowance   int64
	// AttendanceByDate memetakan "2006-01-02" -> status absensi hari itu.
	AttendanceByDate map[string]string
	// LeaveDates berisi tanggal "2006-01-02" yang tercakup cuti APPROVED.
	LeaveDates map[string]bool
	// StoredAmount adalah amount baris payroll yang tersimpan; Diff mengukur
	// selisih hasil hitung ulang terhadap nilai itu.
	StoredAmount int64
}

type Breakdown struct {
	WorkingDays int `json:"working_days"`
	PresentDays int `json:"present_days"`
	AbsentDays  int `json:"absent_days"`
	LeaveDays   int `json:"leave_days"`
	LateDays    int `json:"late_days"`

	DailyRate       int64 `json:"daily_rate"`
	BasePay         int64 `json:"base_pay"`
	Allowance       int64 `json:"allowance"`
	AbsentDeduction int64 `json:"absent_deduction"`
	LateDeduction   int64 `json:"late_deduction"`
	Net             int64 `json:"net"`
	StoredAmount    int64 `json:"stored_amount"`
	Diff            int64 `json:"diff"`
}

// ComputeBreakdown menghitung ulang satu baris payroll dari bukti absensi dan
// cuti. Fungsi murni: seluruh input lewat parameter, tidak menyentuh DB.
//
// Prioritas klasifikasi per hari kerja: cuti APPROVED menang atas absensi;
// tanpa baris atau ABSENT berarti mangkir. Hanya hari PRESENT yang masuk
// basePay; hari LATE tidak dibayar dan masih kena potongan sesuai policy.
func ComputeBreakdown(policy Policy, in CalcInput) Breakdown {
	b := Breakdown{
		Allowance:    in.Allowance,
		StoredAmount: in.StoredAmount,
	}

	for d := in.PeriodStart; !d.After(in.PeriodEnd); d = d.AddDate(0, 0, 1) {
		if policy.WeekendDays[d.Weekday()] {
			continue
		}
		b.WorkingDays++

		key := d.Format("2006-01-02")
		switch {
		case in.LeaveDates[key]:
			b.LeaveDays++
		case in.AttendanceByDate[key] == DayPresent:
			b.PresentDays++
		case in.AttendanceByDate[key] == DayLate:
			b.LateDays++
		default:
			b.AbsentDays++
		}
	}

	if b.WorkingDays > 0 {
		b.DailyRate = in.BaseSalary / int64(b.WorkingDays)
	}

	b.BasePay = b.DailyRate * int64(b.PresentDays)
	b.AbsentDeduction = b.DailyRate * int64(b.AbsentDays) * policy.AbsentDeductionBPS / 10000
	b.LateDeduction = b.DailyRate * int64(b.LateDays) * policy.LateDeductionBPS / 10000
	b.Net = b.BasePay - b.AbsentDeduction - b.LateDeduction + b.Allowance
	b.Diff = b.Net - b.StoredAmount

	return b
}
