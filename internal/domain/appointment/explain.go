package appointment

type transitionKey struct {
	from Status
	to   Status
}

const genericTransitionReason = "automatic status update"

var transitionReasons = map[transitionKey]string{
	{StatusPending, StatusScheduled}:          "all invitees accepted",
	{StatusPending, StatusCanceled}:           "all invitees declined",
	{StatusPending, StatusFinalized}:          "appointment time has passed",
	{StatusSendingInvites, StatusPending}:     "invites sent, awaiting responses",
	{StatusSendingInvites, StatusUnderReview}: "invite delivery failed, needs attention",
	{StatusSendingInvites, StatusScheduled}:   "invitees responded during delivery",
	{StatusSendingInvites, StatusCanceled}:    "all invitees declined",
	{StatusSendingInvites, StatusFinalized}:   "appointment time has passed",
	{StatusScheduled, StatusPending}:          "invitee list changed, awaiting responses",
	{StatusScheduled, StatusCanceled}:         "all invitees declined",
	{StatusScheduled, StatusFinalized}:        "appointment time has passed",
	{StatusScheduled, StatusSendingInvites}:   "invites sent",
	{StatusUnderReview, StatusSendingInvites}: "invites sent",
	{StatusConfirmed, StatusFinalized}:        "appointment time has passed",
}

// ExplainTransition returns a short audit reason for an automatic change.
// Unknown pairs get a generic reason.
func ExplainTransition(from, to Status) string {
	if r, ok := transitionReasons[transitionKey{from, to}]; ok {
		return r
	}
	return genericTransitionReason
}
