package utils

import "math"

// TATBreakdown is a turnaround time expressed in calendar units.
type TATBreakdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ConvertTAT converts a turnaround time given in fractional days (the unit
// the regression models and the lab catalog use) into days, hours and
// minutes. Negative inputs are treated as zero.
func ConvertTAT(tatDays float64) TATBreakdown {
	if tatDays < 0 || math.IsNaN(tatDays) {
		return TATBreakdown{}
	}

	days := int(tatDays)
	hoursFloat := (tatDays - float64(days)) * 24
	hours := int(hoursFloat)
	minutes := int(math.Round((hoursFloat - float64(hours)) * 60))

	// Rounding minutes can carry into the next hour.
	if minutes == 60 {
		minutes = 0
		hours++
	}
	if hours == 24 {
		hours = 0
		days++
	}

	return TATBreakdown{Days: days, Hours: hours, Minutes: minutes}
}
