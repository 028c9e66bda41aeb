package audit

import (
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

func ulidEntropy(r io.Reader) io.Reader {
	return ulid.Monotonic(r, 0)
}

// newIDLocked returns a ULID for t. Ids from one logger sort by creation.
func (l *Logger) newIDLocked(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), l.entropy).String()
}
