// Package ecserr defines the engine's error taxonomy so every internal
// package can raise and compare the same failure kinds without importing
// the root package (which would create an import cycle, since the root
// package re-exports these as its public error surface). Every kind shares
// the single EngineError struct, distinguished by its Kind field.
package ecserr

import "fmt"

// Kind identifies one of the fixed failure categories the engine raises.
// These are programmer errors, not recoverable runtime conditions: the
// core surfaces them at the faulting operation and never attempts rollback.
type Kind int

const (
	CapacityOverflow Kind = iota
	GenerationOverflow
	DoubleDestroy
	DeadEntity
	NotInArchetype
	UnknownComponent
	DuplicateSystem
	SystemNotFound
	CyclicDependency
)

func (k Kind) String() string {
	switch k {
	case CapacityOverflow:
		return "CAPACITY_OVERFLOW"
	case GenerationOverflow:
		return "GENERATION_OVERFLOW"
	case DoubleDestroy:
		return "DOUBLE_DESTROY"
	case DeadEntity:
		return "DEAD_ENTITY"
	case NotInArchetype:
		return "NOT_IN_ARCHETYPE"
	case UnknownComponent:
		return "UNKNOWN_COMPONENT"
	case DuplicateSystem:
		return "DUPLICATE_SYSTEM"
	case SystemNotFound:
		return "SYSTEM_NOT_FOUND"
	case CyclicDependency:
		return "CYCLIC_DEPENDENCY"
	}
	return "UNKNOWN"
}

// EngineError is the concrete error type for every engine failure kind.
// Two EngineErrors are Is-equivalent when their Kind matches, regardless
// of Detail, so callers can write errors.Is(err, ecserr.ErrDeadEntity).
type EngineError struct {
	Kind   Kind
	Detail string
}

func (e *EngineError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is implements errors.Is comparison by Kind alone.
func (e *EngineError) Is(target error) bool {
	other, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newf(k Kind, format string, args ...any) *EngineError {
	return &EngineError{Kind: k, Detail: fmt.Sprintf(format, args...)}
}

// Sentinel zero-detail values usable directly with errors.Is.
var (
	ErrCapacityOverflow  = &EngineError{Kind: CapacityOverflow}
	ErrGenerationOverflow = &EngineError{Kind: GenerationOverflow}
	ErrDoubleDestroy     = &EngineError{Kind: DoubleDestroy}
	ErrDeadEntity        = &EngineError{Kind: DeadEntity}
	ErrNotInArchetype    = &EngineError{Kind: NotInArchetype}
	ErrUnknownComponent  = &EngineError{Kind: UnknownComponent}
	ErrDuplicateSystem   = &EngineError{Kind: DuplicateSystem}
	ErrSystemNotFound    = &EngineError{Kind: SystemNotFound}
	ErrCyclicDependency  = &EngineError{Kind: CyclicDependency}
)

// Constructors produce a detailed EngineError of the matching kind.

func CapacityOverflowf(format string, args ...any) *EngineError {
	return newf(CapacityOverflow, format, args...)
}

func GenerationOverflowf(format string, args ...any) *EngineError {
	return newf(GenerationOverflow, format, args...)
}

func DoubleDestroyf(format string, args ...any) *EngineError {
	return newf(DoubleDestroy, format, args...)
}

func DeadEntityf(format string, args ...any) *EngineError {
	return newf(DeadEntity, format, args...)
}

func NotInArchetypef(format string, args ...any) *EngineError {
	return newf(NotInArchetype, format, args...)
}

func UnknownComponentf(format string, args ...any) *EngineError {
	return newf(UnknownComponent, format, args...)
}

func DuplicateSystemf(format string, args ...any) *EngineError {
	return newf(DuplicateSystem, format, args...)
}

func SystemNotFoundf(format string, args ...any) *EngineError {
	return newf(SystemNotFound, format, args...)
}

func CyclicDependencyf(format string, args ...any) *EngineError {
	return newf(CyclicDependency, format, args...)
}
