package audit

import "errors"

var ErrSessionEnded = errors.New("audit session already ended")
