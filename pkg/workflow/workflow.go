package workflow

import (
	"errors"
	"fmt"

	"github.com/matzehuels/jobtimeline/pkg/timeline"
)

var (
	// ErrMissingField is returned when a job record lacks its entity name.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownFormat is returned for input formats other than json, yaml
	// and toml.
	ErrUnknownFormat = errors.New("unknown workflow format")

	// ErrMalformedDAG is returned when the dag is not a map of names to
	// name lists.
	ErrMalformedDAG = errors.New("malformed dag")
)

// Job is one observed job record.
type Job struct {
	EntityName  string `json:"entityName" yaml:"entityName" toml:"entityName"`
	SubmitTime  int64  `json:"submitTime" yaml:"submitTime" toml:"submitTime"`
	ElapsedTime int64  `json:"elapsedTime" yaml:"elapsedTime" toml:"elapsedTime"`
	Status      bool   `json:"status" yaml:"status" toml:"status"`
}

// Workflow is a decoded workflow document.
type Workflow struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Jobs []Job  `json:"jobs" yaml:"jobs" toml:"jobs"`
	DAG  DAG    `json:"dag" yaml:"dag" toml:"-"`
}

// Validate checks that every job names its entity.
func (w *Workflow) Validate() error {
	for i, j := range w.Jobs {
		if j.EntityName == "" {
			return fmt.Errorf("job #%d: entityName: %w", i, ErrMissingField)
		}
	}
	return nil
}

// TimelineJobs converts the job records for [timeline.Build].
func (w *Workflow) TimelineJobs() []timeline.Job {
	out := make([]timeline.Job, len(w.Jobs))
	for i, j := range w.Jobs {
		out[i] = timeline.Job{
			Name:        j.EntityName,
			SubmitTime:  j.SubmitTime,
			ElapsedTime: j.ElapsedTime,
			Finished:    j.Status,
		}
	}
	return out
}

// Graph validates the workflow and builds its timeline graph.
func (w *Workflow) Graph() (*timeline.Graph, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return timeline.Build(w.TimelineJobs(), timeline.Dependencies(w.DAG))
}

// Stats summarises a workflow for logs and listings.
type Stats struct {
	Jobs     int
	Finished int
	Sources  int
	Links    int
}

// Stats counts jobs and dag entries.
func (w *Workflow) Stats() Stats {
	s := Stats{Jobs: len(w.Jobs), Sources: len(w.DAG)}
	for _, j := range w.Jobs {
		if j.Status {
			s.Finished++
		}
	}
	for _, d := range w.DAG {
		s.Links += len(d.Targets)
	}
	return s
}
