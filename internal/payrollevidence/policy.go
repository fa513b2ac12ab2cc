package payrollevidence

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Policy memegang parameter potongan gaji. Nilai dalam basis points
// (10000 = 100%) agar tetap aritmetika bulat.
type Policy struct {
	AbsentDeductionBPS int64
	LateDeductionBPS   int64
	WeekendDays        map[time.Weekday]bool
}

const (
	defaultAbsentDeductionBPS = 10000
	defaultLateDeductionBPS   = 2500
)

func DefaultPolicy() Policy {
	return Policy{
		AbsentDeductionBPS: defaultAbsentDeductionBPS,
		LateDeductionBPS:   defaultLateDeductionBPS,
		WeekendDays:        map[time.Weekday]bool{time.Sunday: true},
	}
}

// PolicyFromEnv membaca PAYROLL_ABSENT_DEDUCTION_BPS,
// PAYROLL_LATE_DEDUCTION_BPS dan PAYROLL_WEEKEND_DAYS (nama hari dipisah
// koma, mis. "Saturday,Sunday"). Nilai tidak valid jatuh ke default.
func PolicyFromEnv() Policy {
	p := DefaultPolicy()

	if v := os.Getenv("PAYROLL_ABSENT_DEDUCTION_BPS"); v != "" {
		if bps, err := strconv.ParseInt(v, 10, 64); err == nil && bps >= 0 && bps <= 10000 {
			p.AbsentDeductionBPS = bps
		}
	}
	if v := os.Getenv("PAYROLL_LATE_DEDUCTION_BPS"); v != "" {
		if bps, err := strconv.ParseInt(v, 10, 64); err == nil && bps >= 0 && bps <= 10000 {
			p.LateDeductionBPS = bps
		}
	}
	if v := os.Getenv("PAYROLL_WEEKEND_DAYS"); v != "" {
		weekend := map[time.Weekday]bool{}
		for _, name := range strings.Split(v, ",") {
			if d, ok := weekdayByName(strings.TrimSpace(name)); ok {
				weekend[d] = true
			}
		}
		if len(weekend) > 0 {
			p.WeekendDays = weekend
		}
	}

	return p
}

func weekdayByName(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}
