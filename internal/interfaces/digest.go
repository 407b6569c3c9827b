package interfaces

import "time"

// DigestWriter turns one day of the cycle journal into a CSV summary
type DigestWriter interface {
	// SummarizeDay writes the digest for the day containing t and returns its path.
	// An empty path with a nil error means the journal had nothing for that day.
	SummarizeDay(t time.Time) (csvPath string, err error)
}
