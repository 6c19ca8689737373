package domain

// Unified progress vocabulary shared by activities and tasks.
const (
	StatusNotStarted StatusName = "Not Started"
	StatusWorkingOn  StatusName = "Working on it"
	StatusStuck      StatusName = "Stuck"
	StatusDone       StatusName = "Done"
	StatusBlocked    StatusName = "Blocked"
	StatusCanceled   StatusName = "Canceled"
)

// Approval vocabulary. Edges between these values are fixed regardless of
// organization label customization.
const (
	ApprovalDraft     StatusName = "draft"
	ApprovalSubmitted StatusName = "submitted"
	ApprovalApproved  StatusName = "approved"
	ApprovalReopened  StatusName = "reopened"
	ApprovalClosed    StatusName = "closed"
	ApprovalRejected  StatusName = "rejected"
)

// Deprecated: legacy literals written before vocabulary unification. They are
// only referenced by the legacy migration table.
const (
	LegacyNotStarted StatusName = "not_started"
	LegacyInProgress StatusName = "in_progress"
	LegacyOnHold     StatusName = "on_hold"
	LegacyCompleted  StatusName = "completed"
	LegacyStopped    StatusName = "stopped"
)

// UnifiedVocabulary lists the progress statuses in default order.
func UnifiedVocabulary() []StatusName {
	return []StatusName{
		StatusNotStarted,
		StatusWorkingOn,
		StatusStuck,
		StatusDone,
		StatusBlocked,
		StatusCanceled,
	}
}

// ApprovalVocabulary lists the approval states in default order.
func ApprovalVocabulary() []StatusName {
	return []StatusName{
		ApprovalDraft,
		ApprovalSubmitted,
		ApprovalApproved,
		ApprovalReopened,
		ApprovalClosed,
		ApprovalRejected,
	}
}

// VocabularyFor returns the system vocabulary for a domain.
func VocabularyFor(d StatusDomain) []StatusName {
	if d == DomainApproval {
		return ApprovalVocabulary()
	}
	return UnifiedVocabulary()
}

// LegacyPair maps one deprecated literal onto its unified replacement.
type LegacyPair struct {
	From StatusName
	To   StatusName
}

func (p LegacyPair) String() string {
	return string(p.From) + " -> " + string(p.To)
}

// LegacyStatusMapping returns the fixed legacy rewrite table in execution order.
func LegacyStatusMapping() []LegacyPair {
	return []LegacyPair{
		{From: LegacyInProgress, To: StatusWorkingOn},
		{From: LegacyOnHold, To: StatusBlocked},
		{From: LegacyCompleted, To: StatusDone},
		{From: LegacyStopped, To: StatusCanceled},
		{From: LegacyNotStarted, To: StatusNotStarted},
	}
}

// UnifiedFromLegacy maps a legacy literal into the unified vocabulary. Values
// that are not legacy literals are returned unchanged.
func UnifiedFromLegacy(name StatusName) (StatusName, bool) {
	for _, pair := range LegacyStatusMapping() {
		if pair.From == name {
			return pair.To, true
		}
	}
	return name, false
}
