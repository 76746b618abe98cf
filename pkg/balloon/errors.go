package balloon

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a name absent from every reachable store scope. It is
// the only recoverable condition in the taxonomy; callers may convert it into
// default behaviour.
var ErrNotFound = errors.New("balloon: not found")

// ErrFormat indicates a structured representation that does not match the
// statically expected shape: wrong JSON kind, unknown type name, or a scalar
// mismatch. It signals schema drift or store corruption and is not retried.
var ErrFormat = errors.New("balloon: malformed representation")

// ConflictError reports a name already bound to a structurally different
// value. Both renderings are carried for diagnosis.
type ConflictError struct {
	Type     string
	Name     string
	Existing string
	Incoming string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("balloon: conflicting definitions of %s %q\nexisting: %s\nincoming: %s",
		e.Type, e.Name, e.Existing, e.Incoming)
}

// AmbiguityError reports a name claimed by more than one concrete type within
// a single namespace. This indicates a corrupted store and is never retried.
type AmbiguityError struct {
	Name  string
	Types []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("balloon: name %q is ambiguous across types %v", e.Name, e.Types)
}

// NamespaceError reports a naming collision detected while recording a
// (name, type) pair: another concrete type already owns the name within a
// shared namespace ancestor.
type NamespaceError struct {
	Name      string
	Namespace string
	Existing  string
	Incoming  string
}

func (e *NamespaceError) Error() string {
	return fmt.Sprintf("balloon: name %q already bound to %s within namespace %s (incoming %s)",
		e.Name, e.Existing, e.Namespace, e.Incoming)
}

// ConfigError reports a schema invariant violated at world-creation time. It
// is raised before any I/O happens.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "balloon: invalid configuration: " + e.Reason }

// CycleError reports a reference cycle among not-yet-tracked named balloons.
// Tracking such a group is rejected rather than recursed into.
type CycleError struct {
	Type string
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("balloon: reference cycle through %s %q", e.Type, e.Name)
}
