package ai

import "errors"

// ErrQuotaExceeded indicates the summary provider hit a quota/limit
// condition (HTTP 429 or similar); callers map it to 429.
var ErrQuotaExceeded = errors.New("ai quota exceeded")
