package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatchResult_UnmarshalCanonical(t *testing.T) {
	data := `{
		"taskInfo": {
			"repo_owner": "octocat",
			"repo_name": "hello-world",
			"issue_number": 42,
			"issue_title": "Fix the widget",
			"installation_id": 12345
		},
		"lastPatchResult": {
			"unifiedDiff": "--- a/a\n+++ b/a\n@@ -1 +1 @@\n-x\n+y\n",
			"error": ""
		}
	}`

	var res PatchResult
	require.NoError(t, json.Unmarshal([]byte(data), &res))
	require.Equal(t, "octocat", res.Task.RepoOwner)
	require.Equal(t, 42, res.Task.IssueNumber)
	require.Equal(t, int64(12345), res.Task.InstallationID)
	require.True(t, res.Outcome.HasChanges())
	require.NoError(t, res.Validate())
}

func TestPatchResult_UnmarshalLegacyIssueInfo(t *testing.T) {
	data := `{
		"issueInfo": {
			"repo_owner": "octocat",
			"repo_name": "hello-world",
			"issue_number": 7
		},
		"lastPatchResult": {
			"patchedFiles": [
				{"sourceFilePath": "a.py", "targetFilePath": "a.py", "targetFileContent": "pass\n"}
			]
		}
	}`

	var res PatchResult
	require.NoError(t, json.Unmarshal([]byte(data), &res))
	require.Equal(t, 7, res.Task.IssueNumber)
	require.Len(t, res.Outcome.Files, 1)
	require.NoError(t, res.Validate())
}

func TestPatchResult_UnmarshalMissingTask(t *testing.T) {
	var res PatchResult
	err := json.Unmarshal([]byte(`{"lastPatchResult": {"error": "boom"}}`), &res)
	require.Error(t, err)
}

func TestPatchResult_ValidateRejectsBothRepresentations(t *testing.T) {
	res := PatchResult{
		Task: Info{RepoOwner: "o", RepoName: "r", IssueNumber: 1},
		Outcome: Outcome{
			UnifiedDiff: "--- a/a\n+++ b/a\n@@ -1 +1 @@\n-x\n+y\n",
			Files:       []PatchedFile{{TargetPath: "a", Content: "y\n"}},
		},
	}
	require.Error(t, res.Validate())
}

func TestPatchResult_ValidateRejectsBadTask(t *testing.T) {
	res := PatchResult{Task: Info{RepoOwner: "o"}}
	require.Error(t, res.Validate())

	res = PatchResult{Task: Info{RepoOwner: "o", RepoName: "r", IssueNumber: 0}}
	require.Error(t, res.Validate())
}

func TestOutcome_HasChanges(t *testing.T) {
	require.False(t, Outcome{}.HasChanges())
	require.False(t, Outcome{UnifiedDiff: "  \n"}.HasChanges())
	require.True(t, Outcome{UnifiedDiff: "--- a/a\n"}.HasChanges())
	require.True(t, Outcome{Files: []PatchedFile{{TargetPath: "a"}}}.HasChanges())
}
