package audit

import (
	"time"

	id "opptak/pkg/domain"
)

// Action names the kind of workflow event being audited.
type Action string

const (
	ActionTransition   Action = "status_transition"
	ActionDecision     Action = "placement_decision"
	ActionDualProposal Action = "dual_placement_proposal"
	ActionDualApproval Action = "dual_placement_approval"
	ActionBatch        Action = "batch_action"
)

// Event is emitted from workflow logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time
	ApplicationID id.ApplicationID
	Action        Action
	From          string
	To            string
	ActorID       id.StaffID
	ActorRole     id.Role
	Reason        string
	ClientIP      string
	UserAgent     string
}
