package diag

// Severity orders diagnostics; a Bag with any SevError fails the query file.
type Severity uint8

const (
	SevInfo Severity = iota // timings and other notes that never fail a run
	SevWarning
	SevError
)

// String returns the upper-case label printed in diagnostic headers.
func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}
