package bot

import (
	"fmt"

	"github.com/google/uuid"
)

const branchPrefix = "triagebot"

// newBranchName derives a branch name from the issue number plus a freshly
// generated unique suffix. Names never repeat across runs, so redelivery of
// the same task cannot collide with an earlier attempt's branch
func newBranchName(issueNumber int) string {
	return fmt.Sprintf("%s/issue-%d-%s", branchPrefix, issueNumber, uuid.New().String()[:8])
}
