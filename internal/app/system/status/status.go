// Package status defines user account statuses.
package status

const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether s is a known account status.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}
