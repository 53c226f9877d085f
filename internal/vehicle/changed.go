package vehicle

import (
	"reflect"
	"time"
)

// Changed returns true if *cur* differs from *prev* in anything except the
// fetch timestamp. The coordinator uses this to skip transmissions when a
// refresh returned the exact same vehicle state.
func Changed(prev, cur *Snapshot) bool {
	if prev == nil && cur == nil {
		return false
	}
	if prev == nil || cur == nil {
		return true
	}

	p, c := *prev, *cur // copy
	p.FetchedAt = time.Time{}
	c.FetchedAt = time.Time{}

	return !reflect.DeepEqual(p, c)
}
