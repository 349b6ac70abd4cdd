// Package service hosts the aggregate services. Each service owns the
// repositories of one entity family and composes policy check, foreign
// reference resolution, builder validation, one transactional write, any
// cascade rule and observer notification behind a small set of named
// operations. Callers receive read-only projections, never raw entities.
package service

import (
	"time"
)

// clock abstracts time.Now so tests can pin derived figures and event
// timestamps.
type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
