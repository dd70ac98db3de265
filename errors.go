package ecscore

import "github.com/thebitdrifter/ecscore/internal/ecserr"

// EngineError is the concrete error type returned by every failing
// operation in this package. Two EngineErrors compare equal under
// errors.Is when their Kind matches, regardless of Detail.
type EngineError = ecserr.EngineError

// Sentinel errors, usable directly with errors.Is(err, ecscore.ErrDeadEntity)
// and friends. The engine never returns a bare error of any other type.
var (
	ErrCapacityOverflow   = ecserr.ErrCapacityOverflow
	ErrGenerationOverflow = ecserr.ErrGenerationOverflow
	ErrDoubleDestroy      = ecserr.ErrDoubleDestroy
	ErrDeadEntity         = ecserr.ErrDeadEntity
	ErrNotInArchetype     = ecserr.ErrNotInArchetype
	ErrUnknownComponent   = ecserr.ErrUnknownComponent
	ErrDuplicateSystem    = ecserr.ErrDuplicateSystem
	ErrSystemNotFound     = ecserr.ErrSystemNotFound
	ErrCyclicDependency   = ecserr.ErrCyclicDependency
)
