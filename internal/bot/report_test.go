package bot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mathlilypeng/github-app/internal/git"
	"github.com/mathlilypeng/github-app/internal/task"
)

func TestUpstreamFailureBody_IncludesErrorAndDiff(t *testing.T) {
	body := upstreamFailureBody(task.Outcome{
		Error:       "timeout",
		UnifiedDiff: "--- a/a.py\n+++ b/a.py\n@@ -1 +1 @@\n-x\n+y\n",
	})

	require.Contains(t, body, "timeout")
	require.Contains(t, body, "```diff")
	require.Contains(t, body, "-x")
}

func TestUpstreamFailureBody_ListsPartialFiles(t *testing.T) {
	body := upstreamFailureBody(task.Outcome{
		Error: "aborted",
		Files: []task.PatchedFile{{TargetPath: "a.py"}, {TargetPath: "b.py"}},
	})

	require.Contains(t, body, "`a.py`")
	require.Contains(t, body, "`b.py`")
}

func TestRunFailureBody_FatalError(t *testing.T) {
	body := runFailureBody(runReport{fatal: &git.RefNotFoundError{Ref: "main"}})
	require.Contains(t, body, `ref "main" not found`)
}

func TestRunFailureBody_FileFailuresReferenceBranch(t *testing.T) {
	body := runFailureBody(runReport{
		branch: "triagebot/issue-42-deadbeef",
		fileFailures: []fileFailure{
			{path: "b.py", err: &git.ConflictError{Path: "b.py", Err: fmt.Errorf("sha mismatch")}},
		},
	})

	require.Contains(t, body, "`b.py`")
	require.Contains(t, body, "stale blob sha")
	require.Contains(t, body, "triagebot/issue-42-deadbeef")
}

func TestPullRequestTitle(t *testing.T) {
	require.Equal(t, "Fix issue #42: Widget is broken", pullRequestTitle(testTask()))

	untitled := testTask()
	untitled.IssueTitle = " "
	require.Equal(t, "Automated fix for issue #42", pullRequestTitle(untitled))
}

func TestPullRequestBody_ClosesIssue(t *testing.T) {
	require.Contains(t, pullRequestBody(testTask()), "Closes #42")
}
