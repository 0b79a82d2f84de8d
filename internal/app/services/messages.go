package services

// Messages returned to members in action results
const (
	MsgNotAuthenticated = "Not authenticated"
	MsgAdminRequired    = "Admin privileges required"

	MsgBookFailed         = "Failed to book course"
	MsgCancelFailed       = "Failed to cancel booking"
	MsgCheckinFailed      = "Failed to check in"
	MsgScheduleFailed     = "Failed to create course"
	MsgStatusFailed       = "Failed to update course status"
	MsgRoleFailed         = "Failed to update role"
	MsgReviewFailed       = "Failed to review verification"
	MsgVerificationFailed = "Failed to submit verification"
)

// ReadStatus tells a lenient read's empty result apart from a failed one
type ReadStatus string

const (
	ReadFound  ReadStatus = "found"
	ReadEmpty  ReadStatus = "empty"
	ReadFailed ReadStatus = "failed"
)
