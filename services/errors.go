package services

import "errors"

// ErrBrokerURLRequired means a broker was not found in the store and the
// roster supplied no URL to create it with. Fatal for that broker's worker
// only; the run continues without it.
var ErrBrokerURLRequired = errors.New("broker not in store and no URL supplied to create it")

// ErrMissingBrokerID means a new listing reached the applier without a
// broker tag. The item is logged and skipped, never the whole batch.
var ErrMissingBrokerID = errors.New("listing has no broker id")
