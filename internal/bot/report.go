package bot

import (
	"fmt"
	"strings"

	"github.com/mathlilypeng/github-app/internal/task"
)

// upstreamFailureBody formats the diagnostic for a result whose computation
// failed upstream. Any diff or file list that arrived alongside the error is
// included for inspection
func upstreamFailureBody(outcome task.Outcome) string {
	var sb strings.Builder
	sb.WriteString("The automated patch for this issue could not be completed.\n\n")
	sb.WriteString(fmt.Sprintf("**Error:** %s\n", outcome.Error))

	if diff := strings.TrimSpace(outcome.UnifiedDiff); diff != "" {
		sb.WriteString("\nThe partial diff that was produced:\n\n")
		sb.WriteString("```diff\n")
		sb.WriteString(diff)
		sb.WriteString("\n```\n")
	}
	if len(outcome.Files) > 0 {
		sb.WriteString("\nFiles in the partial change set:\n\n")
		for _, f := range outcome.Files {
			sb.WriteString(fmt.Sprintf("- `%s`\n", f.TargetPath))
		}
	}
	return sb.String()
}

// noChangesBody is the neutral diagnostic for a result that carried no error
// and no changes
func noChangesBody() string {
	return "The automated patch run finished without producing any changes. " +
		"No pull request was created. The issue may need manual attention."
}

// runFailureBody formats the diagnostic for a mutation run that failed. When a
// branch was already created it is referenced so partial progress stays
// discoverable; nothing is rolled back
func runFailureBody(report runReport) string {
	var sb strings.Builder
	sb.WriteString("The automated patch could not be turned into a pull request.\n\n")

	if report.fatal != nil {
		sb.WriteString(fmt.Sprintf("**Error:** %s\n", report.fatal))
	}

	if len(report.fileFailures) > 0 {
		sb.WriteString("The following files could not be updated:\n\n")
		for _, failure := range report.fileFailures {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", failure.path, failure.err))
		}
	}

	if report.branch != "" {
		sb.WriteString(fmt.Sprintf("\nChanges that were applied before the failure remain on branch `%s`.\n", report.branch))
	}
	return sb.String()
}
