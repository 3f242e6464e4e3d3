// Package metrics counts what the watch loop does. Components take a Recorder
// and default to NoopRecorder when metrics are not served.
package metrics

type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

type Recorder interface {
	// IncCheck counts one presence sample; present is the sampled value.
	IncCheck(present bool)
	// IncTransition counts a state change into the named state.
	IncTransition(to string)
	IncDisplayCommand(r Result)
}

type NoopRecorder struct{}

func (NoopRecorder) IncCheck(bool)            {}
func (NoopRecorder) IncTransition(string)     {}
func (NoopRecorder) IncDisplayCommand(Result) {}
