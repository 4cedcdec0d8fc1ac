package service

import "errors"

// ErrNotImplemented is returned by write operations when the service runs
// without a signing key.
var ErrNotImplemented = errors.New("Method not implemented.")
