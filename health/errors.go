package health

import "errors"

// ErrCheckFailed wraps the cause of an unhealthy result.
var ErrCheckFailed = errors.New("health: check failed")
