package registry

import "strings"

// The vendor service reports duplicate creation only as free-text messages;
// there is no structured conflict signal in its responses. These marker
// tables are the single place that text is interpreted, so when the vendor
// rewords its messages only this file needs updating. Known fragility: an
// unrecognised rewording silently downgrades a conflict to a transport
// failure.
var duplicateMarkers = []string{
	"already exists",
	"duplicate",
	"must be unique",
	"is not unique",
}

// IsDuplicateMessage reports whether a vendor error text denotes a
// duplicate-creation conflict.
func IsDuplicateMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range duplicateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Expired-date rejections are terminal: the data is wrong, not the timing.
var terminalMarkers = []string{
	"expiry date is in the past",
	"expired",
}

// IsTerminalMessage reports whether a vendor error text denotes a data
// problem that no retry can repair.
func IsTerminalMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range terminalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
