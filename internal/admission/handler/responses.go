package handler

import (
	"time"

	"opptak/internal/admission"
	"opptak/internal/domain"
)

// ApplicationResponse is the wire shape of an application, including the
// transition history that backs the guardian-facing status view.
type ApplicationResponse struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	Status        string               `json:"status"`
	Round         string               `json:"round,omitempty"`
	Priority      string               `json:"priority"`
	Child         ChildPayload         `json:"child"`
	Guardians     []GuardianPayload    `json:"guardians"`
	Preferences   []PreferencePayload  `json:"preferences"`
	Dual          *DualPayload         `json:"dual_placement,omitempty"`
	SiblingPlaced bool                 `json:"sibling_placed"`
	SubmittedAt   *time.Time           `json:"submitted_at,omitempty"`
	LastModified  time.Time            `json:"last_modified"`
	History       []TransitionResponse `json:"history"`
}

type TransitionResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorRole string    `json:"actor_role"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// ClassificationResponse is the provisional round preview.
type ClassificationResponse struct {
	Round     string `json:"round"`
	Deadline  string `json:"deadline,omitempty"`
	Rationale string `json:"rationale"`
}

// FromApplication maps a domain application to its wire shape.
func FromApplication(app domain.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:       app.ID.String(),
		Type:     string(app.Type),
		Status:   string(app.Status),
		Round:    string(app.Round),
		Priority: string(app.Priority()),
		Child: ChildPayload{
			FirstName:      app.Child.FirstName,
			LastName:       app.Child.LastName,
			BirthDate:      app.Child.BirthDate.Format(dateLayout),
			NationalID:     app.Child.NationalID,
			TemporaryID:    app.Child.TemporaryID,
			SpecialNeeds:   app.Child.SpecialNeeds,
			StatutoryRight: app.Child.StatutoryRight,
		},
		SiblingPlaced: app.SiblingPlaced,
		LastModified:  app.LastModified,
	}
	if !app.SubmittedAt.IsZero() {
		submitted := app.SubmittedAt
		resp.SubmittedAt = &submitted
	}
	for _, g := range app.Guardians {
		resp.Guardians = append(resp.Guardians, GuardianPayload{
			FirstName:   g.FirstName,
			LastName:    g.LastName,
			NationalID:  g.NationalID,
			TemporaryID: g.TemporaryID,
		})
	}
	for _, p := range app.Preferences {
		resp.Preferences = append(resp.Preferences, PreferencePayload{
			Rank:           p.Rank,
			KindergartenID: p.KindergartenID.String(),
		})
	}
	if app.Dual != nil {
		resp.Dual = &DualPayload{
			PrimaryKindergartenID:   app.Dual.PrimaryKindergartenID.String(),
			SecondaryKindergartenID: app.Dual.SecondaryKindergartenID.String(),
			Justification:           app.Dual.Justification,
		}
	}
	for _, rec := range app.History {
		resp.History = append(resp.History, TransitionResponse{
			From:      string(rec.From),
			To:        string(rec.To),
			ActorRole: rec.ActorRole.String(),
			Timestamp: rec.Timestamp,
			Reason:    rec.Reason,
		})
	}
	return resp
}

// FromRoundResult maps a classifier result to its wire shape.
func FromRoundResult(result admission.RoundResult) ClassificationResponse {
	resp := ClassificationResponse{
		Round:     string(result.Round),
		Rationale: result.Rationale,
	}
	if result.Deadline != nil {
		resp.Deadline = result.Deadline.Format(dateLayout)
	}
	return resp
}
