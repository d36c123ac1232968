package ask

import "errors"

// ErrNoAskService is returned when asking without an ask service.
var ErrNoAskService = errors.New("ask service not available")
