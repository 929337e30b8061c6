package timeline

import "strconv"

// FormatDuration renders a millisecond duration as a compact axis label:
// "0", "45s", "2m 5s", "3h", "1d 1h", "2w 3d". Only the two largest units
// are shown and a zero second unit is dropped.
func FormatDuration(ms int64) string {
	if ms == 0 {
		return "0"
	}
	seconds := ms / 1000
	if seconds < 60 {
		return strconv.FormatInt(seconds, 10) + "s"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return pair(minutes, "m", seconds-60*minutes, "s")
	}
	hours := minutes / 60
	if hours < 24 {
		return pair(hours, "h", minutes-60*hours, "m")
	}
	days := hours / 24
	if days < 7 {
		return pair(days, "d", hours-24*days, "h")
	}
	weeks := days / 7
	return pair(weeks, "w", days-7*weeks, "d")
}

func pair(major int64, majorUnit string, minor int64, minorUnit string) string {
	s := strconv.FormatInt(major, 10) + majorUnit
	if minor == 0 {
		return s
	}
	return s + " " + strconv.FormatInt(minor, 10) + minorUnit
}
