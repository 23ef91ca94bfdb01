package mqtt

import "errors"

// ErrNotConnected is returned when publishing on a client that has been disconnected.
var ErrNotConnected = errors.New("mqtt client not connected")
