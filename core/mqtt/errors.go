package mqtt

import "errors"

// ErrNotConnected is returned when publishing on a client without a broker
// session.
var ErrNotConnected = errors.New("mqtt client not connected")
