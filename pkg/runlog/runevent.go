// Package runlog provides append-only logging of place-and-route runs.
package runlog

import (
	"fmt"
	"time"
)

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Event represents one icepnr invocation, from input read to bitstream write.
type Event struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Device      string        `json:"device"`
	Package     string        `json:"package"`
	Seed        int64         `json:"seed"`
	InputFile   string        `json:"input_file"`
	OutputHash  string        `json:"output_hash,omitempty"` // blake2b-256 of the emitted bitstream text
	RouteOnly   bool          `json:"route_only"`
	Stages      []StageTiming `json:"stages,omitempty"`
	NumLCs      int           `json:"num_lcs,omitempty"`
	NumIOs      int           `json:"num_ios,omitempty"`
	NumGlobals  int           `json:"num_globals,omitempty"`
	RoutePasses int           `json:"route_passes,omitempty"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Filter defines criteria for querying run events.
type Filter struct {
	Device      string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new run event for the given device/package/seed.
func NewEvent(device, pkg string, seed int64) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		Device:    device,
		Package:   pkg,
		Seed:      seed,
	}
}

// WithInput sets the input file path.
func (e *Event) WithInput(path string) *Event {
	e.InputFile = path
	return e
}

// WithRouteOnly marks the event as a --route-only run.
func (e *Event) WithRouteOnly(routeOnly bool) *Event {
	e.RouteOnly = routeOnly
	return e
}

// AddStage appends one stage's timing.
func (e *Event) AddStage(stage string, d time.Duration) *Event {
	e.Stages = append(e.Stages, StageTiming{Stage: stage, Duration: d})
	return e
}

// WithCounts records final design statistics.
func (e *Event) WithCounts(numLCs, numIOs, numGlobals, routePasses int) *Event {
	e.NumLCs = numLCs
	e.NumIOs = numIOs
	e.NumGlobals = numGlobals
	e.RoutePasses = routePasses
	return e
}

// WithOutputHash records the content hash of the emitted bitstream.
func (e *Event) WithOutputHash(hash string) *Event {
	e.OutputHash = hash
	return e
}

// WithSuccess marks the run as successful.
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the run as failed.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the total run duration.
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
