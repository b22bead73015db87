package models

import "time"

// CommMethod enumerates contact channels for candidate communication logs.
type CommMethod string

const (
	CommMethodCall     CommMethod = "CALL"
	CommMethodWhatsApp CommMethod = "WHATSAPP"
	CommMethodEmail    CommMethod = "EMAIL"
	CommMethodInPerson CommMethod = "IN_PERSON"
)

// CommMethodOptions enumerates the accepted communication methods.
var CommMethodOptions = []CommMethod{
	CommMethodCall,
	CommMethodWhatsApp,
	CommMethodEmail,
	CommMethodInPerson,
}

// CommOutcome enumerates the result of a communication attempt.
type CommOutcome string

const (
	CommOutcomeConnected     CommOutcome = "CONNECTED"
	CommOutcomeNoAnswer      CommOutcome = "NO_ANSWER"
	CommOutcomeFollowUp      CommOutcome = "FOLLOW_UP"
	CommOutcomeNotInterested CommOutcome = "NOT_INTERESTED"
)

// CommOutcomeOptions enumerates the accepted communication outcomes.
var CommOutcomeOptions = []CommOutcome{
	CommOutcomeConnected,
	CommOutcomeNoAnswer,
	CommOutcomeFollowUp,
	CommOutcomeNotInterested,
}

// ValidCommMethod reports whether the given value is a known method.
func ValidCommMethod(m CommMethod) bool {
	for _, opt := range CommMethodOptions {
		if m == opt {
			return true
		}
	}
	return false
}

// ValidCommOutcome reports whether the given value is a known outcome.
func ValidCommOutcome(o CommOutcome) bool {
	for _, opt := range CommOutcomeOptions {
		if o == opt {
			return true
		}
	}
	return false
}

// CommunicationLog records an outreach attempt against a candidate
// (transactional entity, hard-deleted).
type CommunicationLog struct {
	ID             string      `db:"id" json:"id"`
	CandidateID    string      `db:"candidate_id" json:"candidate_id"`
	Method         CommMethod  `db:"method" json:"method"`
	Outcome        CommOutcome `db:"outcome" json:"outcome"`
	Notes          string      `db:"notes" json:"notes"`
	CommunicatedOn *time.Time  `db:"communicated_on" json:"communicated_on,omitempty"`
	CreatedBy      string      `db:"created_by" json:"created_by"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}
