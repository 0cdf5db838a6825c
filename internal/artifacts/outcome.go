package artifacts

// Status tags how an artifact value was produced.
type Status string

const (
	// StatusGenerated means the AI provider produced the value and it
	// passed validation.
	StatusGenerated Status = "generated"
	// StatusDegraded means the value is the artifact's static fallback,
	// either because the provider is unconfigured or because generation
	// or validation failed. Reason carries the cause.
	StatusDegraded Status = "degraded"
)

// Outcome pairs an artifact value with how it was obtained. Callers that
// only want content read Value; callers that care about quality inspect
// Status and Reason. A generator never returns an error; degradation is
// part of its contract, not a failure.
type Outcome[T any] struct {
	Value  T
	Status Status
	Reason string
}

func Generated[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Status: StatusGenerated}
}

func Degraded[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Status: StatusDegraded, Reason: reason}
}

func (o Outcome[T]) IsDegraded() bool { return o.Status == StatusDegraded }
