// Package clients provides HTTP client adapters for downstream services.
package clients

import "errors"

// ErrRequestFailed is returned when no response could be obtained, after all
// attempts were used or the context ended. The last transport error is
// wrapped alongside it. It is an infrastructure failure; adapters translate
// it to a domain error.
var ErrRequestFailed = errors.New("request failed")
