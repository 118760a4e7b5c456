package model

import (
	"math/bits"
	"time"
)

// WorkWeek is a 7-bit set of scheduled weekdays. Bit 0 is Monday, bit 6 is
// Sunday. The mask is stored as-is in the employees table.
type WorkWeek uint8

// Common masks.
const (
	WorkWeekMonFri WorkWeek = 0b0011111
	WorkWeekAll    WorkWeek = 0b1111111
)

// isoIndex converts a Go weekday (Sunday = 0) to a Monday-based index.
func isoIndex(wd time.Weekday) int { return (int(wd) + 6) % 7 }

// IsWorkingDay reports whether the weekday of date is set in the mask.
func (w WorkWeek) IsWorkingDay(date Date) bool {
	return w>>isoIndex(date.Weekday())&1 == 1
}

// Count returns the number of scheduled weekdays, clamped to a minimum of
// one so a malformed all-zero mask never divides capacity by zero.
func (w WorkWeek) Count() int {
	if n := bits.OnesCount8(uint8(w)); n > 0 {
		return n
	}
	return 1
}
