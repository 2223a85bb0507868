// Package calendar provides ISO-date and working-day arithmetic for schedules.
//
// All arithmetic happens on UTC midnights so that daylight-saving transitions
// never shift a date by one. Inputs and outputs are always "YYYY-MM-DD"
// strings; an input that does not parse is returned unchanged rather than
// reported as an error, because callers recompute on every keystroke and a
// half-typed date is a normal state of the document.
//
// # Working days
//
// A [Calendar] decides which days count as working days:
//
//   - weekend days (per [Weekend] convention) are never working days
//   - excluded weekday names and excluded literal dates are skipped
//   - dates listed in Includes are working days even when otherwise excluded
//
// [AddWorkingDays] walks forward one calendar day at a time and counts only
// working days. The walk is bounded by 10*days+365 steps; if a calendar
// excludes every day the best estimate reached so far is returned.
//
// # Example
//
//	cal := calendar.Calendar{Weekend: calendar.WeekendSaturdaySunday}
//	end := cal.AddWorkingDays("2024-01-01", 5) // "2024-01-08"
package calendar
