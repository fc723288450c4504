package domain

import "time"

// ResponseFilter narrows which response rows are loaded for analytics.
// Row-level authorization (tenant scoping) is applied by the repository; the
// analytics engine itself never filters rows by date or tenant.
type ResponseFilter struct {
	From             *time.Time
	To               *time.Time
	RespondentSearch string
	Limit            int
}
