package loop

import (
	"runtime"
	"strconv"
	"strings"
)

// goid returns the id of the calling goroutine.
//
// The runtime does not expose goroutine ids, so this parses the first line of
// the stack trace, which has the stable form "goroutine N [status]:". The id
// is only ever compared for equality against the loop goroutine's own id; it
// is never used for scheduling.
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	i := strings.IndexByte(header, ' ')
	if i < 0 {
		return -1
	}
	id, err := strconv.ParseInt(header[:i], 10, 64)
	if err != nil {
		return -1
	}
	return id
}
