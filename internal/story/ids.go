package story

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// branchIDPrefix is shared with ids generated by the mobile client.
const branchIDPrefix = "branch_"

// NewBranchID returns a placeholder id in the client format branch_<unixMillis>_<random>.
func NewBranchID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s%d_%s", branchIDPrefix, time.Now().UnixMilli(), random)
}
