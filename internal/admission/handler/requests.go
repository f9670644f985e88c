package handler

import (
	"time"

	"opptak/internal/admission"
	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// CreateApplicationRequest is the intake payload for a new draft.
type CreateApplicationRequest struct {
	Type          string              `json:"type"`
	Child         ChildPayload        `json:"child"`
	Guardians     []GuardianPayload   `json:"guardians"`
	Preferences   []PreferencePayload `json:"preferences"`
	Dual          *DualPayload        `json:"dual_placement,omitempty"`
	SiblingPlaced bool                `json:"sibling_placed"`
}

type ChildPayload struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	BirthDate      string `json:"birth_date"`
	NationalID     string `json:"national_id,omitempty"`
	TemporaryID    string `json:"temporary_id,omitempty"`
	SpecialNeeds   bool   `json:"special_needs"`
	StatutoryRight bool   `json:"statutory_right"`
}

type GuardianPayload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NationalID  string `json:"national_id,omitempty"`
	TemporaryID string `json:"temporary_id,omitempty"`
}

type PreferencePayload struct {
	Rank           int    `json:"rank"`
	KindergartenID string `json:"kindergarten_id"`
}

type DualPayload struct {
	PrimaryKindergartenID   string `json:"primary_kindergarten_id"`
	SecondaryKindergartenID string `json:"secondary_kindergarten_id"`
	Justification           string `json:"justification"`
}

// ToInput validates and converts the payload into a service input.
func (r CreateApplicationRequest) ToInput() (admission.CreateDraftInput, error) {
	appType, err := domain.ParseApplicationType(r.Type)
	if err != nil {
		return admission.CreateDraftInput{}, err
	}
	birthDate, err := time.Parse(dateLayout, r.Child.BirthDate)
	if err != nil {
		return admission.CreateDraftInput{}, dErrors.New(dErrors.CodeInvalidInput, "invalid child birth date")
	}
	if r.Child.NationalID == "" && r.Child.TemporaryID == "" {
		return admission.CreateDraftInput{}, dErrors.New(dErrors.CodeInvalidInput, "child requires a national or temporary id")
	}

	in := admission.CreateDraftInput{
		Type: appType,
		Child: domain.Child{
			FirstName:      r.Child.FirstName,
			LastName:       r.Child.LastName,
			BirthDate:      birthDate.UTC(),
			NationalID:     r.Child.NationalID,
			TemporaryID:    r.Child.TemporaryID,
			SpecialNeeds:   r.Child.SpecialNeeds,
			StatutoryRight: r.Child.StatutoryRight,
		},
		SiblingPlaced: r.SiblingPlaced,
	}

	for _, g := range r.Guardians {
		guardian := domain.Guardian{
			FirstName:   g.FirstName,
			LastName:    g.LastName,
			NationalID:  g.NationalID,
			TemporaryID: g.TemporaryID,
		}
		guardian.IdentityMethod = domain.IdentityNationalID
		if g.NationalID == "" {
			if g.TemporaryID == "" {
				return admission.CreateDraftInput{}, dErrors.New(dErrors.CodeInvalidInput, "guardian requires a national or temporary id")
			}
			guardian.IdentityMethod = domain.IdentityTemporaryID
		}
		in.Guardians = append(in.Guardians, guardian)
	}

	for _, p := range r.Preferences {
		kgID, err := id.ParseKindergartenID(p.KindergartenID)
		if err != nil {
			return admission.CreateDraftInput{}, err
		}
		in.Preferences = append(in.Preferences, domain.Preference{Rank: p.Rank, KindergartenID: kgID})
	}

	if r.Dual != nil {
		primary, err := id.ParseKindergartenID(r.Dual.PrimaryKindergartenID)
		if err != nil {
			return admission.CreateDraftInput{}, err
		}
		secondary, err := id.ParseKindergartenID(r.Dual.SecondaryKindergartenID)
		if err != nil {
			return admission.CreateDraftInput{}, err
		}
		in.Dual = &domain.DualRequest{
			PrimaryKindergartenID:   primary,
			SecondaryKindergartenID: secondary,
			Justification:           r.Dual.Justification,
		}
	}
	return in, nil
}

// TransitionRequest asks for one state-machine step.
type TransitionRequest struct {
	Target string `json:"target"`
	Reason string `json:"reason,omitempty"`
}
