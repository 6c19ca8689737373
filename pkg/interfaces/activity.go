package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord mirrors the go-users activity record contract so status change
// audit entries land in the same feed as the rest of the tracker.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink captures audit events; implementations are expected to satisfy
// the go-users ActivitySink contract.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
