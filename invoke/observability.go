package invoke

// InvocationObservation captures one pipeline run outcome.
type InvocationObservation struct {
	Binary     string
	Succeeded  bool
	ErrorCode  string
	ExitCode   int
	DurationMS int64
	Silent     bool
	OutputKind string
}

// Observer receives invocation-level observability events.
type Observer interface {
	ObserveInvocation(observation InvocationObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveInvocation(InvocationObservation) {}
