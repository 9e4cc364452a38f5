// Package services layers the domain use cases over the store and the LLM
// gateway. Each aggregate gets its own small service; handlers depend on
// these rather than on the store directly.
package services

import "time"

func nowUTC() time.Time { return time.Now().UTC() }
