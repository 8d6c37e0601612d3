// internal/app/system/status/status.go
package status

// Shared status values used across collections.
const (
	Active   = "active"
	Disabled = "disabled"
)
