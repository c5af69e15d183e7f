// Package reproducible implements support for reproducible builds, per
// https://reproducible-builds.org/docs/source-date-epoch/.
package reproducible

import (
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	nowOnce sync.Once
	now     time.Time
)

// Now returns the current time, or the time named by the SOURCE_DATE_EPOCH environment variable
// if it is set.  The answer is latched the first time it is asked for.
func Now() time.Time {
	nowOnce.Do(func() {
		secs, err := strconv.ParseInt(os.Getenv("SOURCE_DATE_EPOCH"), 10, 64)
		if err == nil {
			now = time.Unix(secs, 0)
		} else {
			now = time.Now()
		}
	})
	return now
}
