package registry

import (
	"fmt"
	"time"
)

// Implementation statuses.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)

var knownStatuses = map[string]bool{
	StatusPlanned:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusVerified:   true,
}

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity is one BPMN service task. Input and output schemas map a job variable name to a short
// type description; the enforced JSON schemas live next to each worker.
type Activity struct {
	ID                   string            `json:"id"`
	DisplayName          string            `json:"displayName"`
	Description          string            `json:"description"`
	Category             string            `json:"category"`
	Version              string            `json:"version"`
	TaskType             string            `json:"taskType"`
	ImplementationStatus string            `json:"implementationStatus"`
	InputSchema          map[string]string `json:"inputSchema"`
	OutputSchema         map[string]string `json:"outputSchema"`
	ErrorCodes           []string          `json:"errorCodes"`
	Timeout              string            `json:"timeout"`
	Retries              int               `json:"retries"`
	Workflows            []string          `json:"workflows"`
	Tags                 []string          `json:"tags"`
}

// TimeoutDuration parses Timeout ("30s", "2m").
func (a Activity) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s timeout %q: %w", a.ID, a.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("activity %s timeout must be positive", a.ID)
	}
	return d, nil
}
