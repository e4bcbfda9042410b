package eventstore

import (
	"git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
)

// Sentinel errors for build history persistence. Callers wrap them with the underlying cause.
var (
	ErrDatabaseOpenFailed     = errors.EventStoreError("could not open build history database").Build()
	ErrInitializeSchemaFailed = errors.EventStoreError("failed to initialize build history schema").Build()
	ErrEventAppendFailed      = errors.EventStoreError("failed to append build event").Build()
	ErrEventQueryFailed       = errors.EventStoreError("failed to query build events").Build()
)
