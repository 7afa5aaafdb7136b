package conversation

import (
	"fmt"
	"time"
)

// FormatDuration renders an execution duration for conversation display:
// sub-second in milliseconds, sub-minute in whole seconds, otherwise whole
// minutes.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dmin", int(d.Minutes()))
	}
}
