package bot

import (
	"strings"

	"github.com/mathlilypeng/github-app/internal/task"
)

// Decision is the routing outcome for one incoming patch result
type Decision int

const (
	// GeneratePullRequest routes the result into the repository mutation
	// pipeline
	GeneratePullRequest Decision = iota

	// ReportFailure routes the result to a diagnostic comment on the
	// originating issue
	ReportFailure
)

func (d Decision) String() string {
	switch d {
	case GeneratePullRequest:
		return "generate-pull-request"
	case ReportFailure:
		return "report-failure"
	default:
		return "unknown"
	}
}

// Decide classifies an incoming patch result. An upstream error always wins,
// even when a change set is also present; an empty change set with no error is
// an explicit "no changes" failure, distinct from an upstream error
func Decide(res task.PatchResult) Decision {
	if strings.TrimSpace(res.Outcome.Error) != "" {
		return ReportFailure
	}
	if res.Outcome.HasChanges() {
		return GeneratePullRequest
	}
	return ReportFailure
}
