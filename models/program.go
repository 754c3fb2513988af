package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program statuses. A program is created Pending and only ever moves
// forward: Pending -> Approved/Rejected, Approved -> Ongoing/Completed/Cancelled.
// Rejected, Completed and Cancelled are terminal.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

var statusTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusOngoing, StatusCompleted, StatusCancelled},
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is an allowed
// forward edge. Terminal statuses allow no transition at all.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Program structures. Immutable after creation; Recurring and Numerical
// programs without a parent act as series masters.
type Structure string

const (
	StructureOneTime   Structure = "One-Time"
	StructureRecurring Structure = "Recurring"
	StructureNumerical Structure = "Numerical"
)

func (s Structure) IsValid() bool {
	switch s {
	case StructureOneTime, StructureRecurring, StructureNumerical:
		return true
	}
	return false
}

// SeriesKind classifies a program within a series.
type SeriesKind string

const (
	SeriesMaster   SeriesKind = "Master"
	SeriesVersion  SeriesKind = "Version"
	SeriesStandard SeriesKind = "Standard"
)

// FieldDef is a single custom question on a program's public
// registration form.
type FieldDef struct {
	Label     string   `bson:"label" json:"label"`
	FieldType string   `bson:"field_type" json:"field_type"` // text, textarea, number, date, select, file
	Required  bool     `bson:"required" json:"required"`
	Options   []string `bson:"options,omitempty" json:"options,omitempty"` // select only
}

var fieldTypes = map[string]bool{
	"text": true, "textarea": true, "number": true,
	"date": true, "select": true, "file": true,
}

// ValidFieldType reports whether t is a supported form field type.
func ValidFieldType(t string) bool {
	return fieldTypes[t]
}

// Registration holds the public-registration settings embedded in a
// program document.
type Registration struct {
	IsOpen     bool       `bson:"is_open" json:"is_open"`
	Deadline   *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	LinkSlug   string     `bson:"link_slug,omitempty" json:"link_slug,omitempty"`
	FormFields []FieldDef `bson:"form_fields,omitempty" json:"form_fields,omitempty"`
}

// ProgramUpdate is a dated progress note left by staff on a program.
type ProgramUpdate struct {
	User primitive.ObjectID `bson:"user" json:"user"`
	Text string             `bson:"text" json:"text"`
	Date time.Time          `bson:"date" json:"date"`
}

// FinalReport is attached when a program is completed.
type FinalReport struct {
	ReportURL string `bson:"report_url,omitempty" json:"report_url,omitempty"`
	MediaLink string `bson:"media_link,omitempty" json:"media_link,omitempty"`
	Summary   string `bson:"summary,omitempty" json:"summary,omitempty"`
}

type Program struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name          string              `bson:"name" json:"name"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	Objectives    string              `bson:"objectives,omitempty" json:"objectives,omitempty"`
	Status        Status              `bson:"status" json:"status"`
	Structure     Structure           `bson:"structure" json:"structure"`
	ParentProgram *primitive.ObjectID `bson:"parent_program,omitempty" json:"parent_program,omitempty"`
	CustomSuffix  string              `bson:"custom_suffix,omitempty" json:"custom_suffix,omitempty"`
	Department    primitive.ObjectID  `bson:"department" json:"department"`
	CreatedBy     primitive.ObjectID  `bson:"created_by" json:"created_by"`

	Cost              float64    `bson:"cost,omitempty" json:"cost,omitempty"`
	Venue             string     `bson:"venue,omitempty" json:"venue,omitempty"`
	ParticipantsCount int        `bson:"participants_count,omitempty" json:"participants_count,omitempty"` // expected
	ActualAttendance  *int       `bson:"actual_attendance,omitempty" json:"actual_attendance,omitempty"`   // post-completion
	Date              *time.Time `bson:"date,omitempty" json:"date,omitempty"`
	StartDate         *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate           *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`

	FlyerURL    string       `bson:"flyer_url,omitempty" json:"flyer_url,omitempty"`
	ProposalURL string       `bson:"proposal_url,omitempty" json:"proposal_url,omitempty"`
	FinalReport *FinalReport `bson:"final_report,omitempty" json:"final_report,omitempty"`

	Registration Registration       `bson:"registration" json:"registration"`
	Participants []ParticipantEntry `bson:"participants" json:"participants"`
	Updates      []ProgramUpdate    `bson:"updates,omitempty" json:"updates,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Classify maps a program to exactly one series kind.
func (p *Program) Classify() SeriesKind {
	if p.ParentProgram == nil && (p.Structure == StructureRecurring || p.Structure == StructureNumerical) {
		return SeriesMaster
	}
	if p.ParentProgram != nil {
		return SeriesVersion
	}
	return SeriesStandard
}

// DisplayName resolves the name shown for a program. Versions default
// to "<parent name> - <suffix>" where the suffix is the explicit
// custom suffix or, absent that, the version's own date.
func (p *Program) DisplayName(parent *Program) string {
	if p.ParentProgram == nil || parent == nil {
		return p.Name
	}
	suffix := p.CustomSuffix
	if suffix == "" && p.Date != nil {
		suffix = p.Date.Format("Jan 2, 2006")
	}
	if suffix == "" {
		return parent.Name
	}
	return fmt.Sprintf("%s - %s", parent.Name, suffix)
}

// RegistrationOpenAt reports whether public registration is accepted at
// the given instant. Closed when the toggle is off or the deadline has
// passed; open otherwise. Callers must evaluate this at request time,
// not cache it.
func (p *Program) RegistrationOpenAt(now time.Time) bool {
	if !p.Registration.IsOpen {
		return false
	}
	if p.Registration.Deadline != nil && now.After(*p.Registration.Deadline) {
		return false
	}
	return true
}

// DefaultFormFields is the schema used when neither a program nor its
// parent master defines custom fields. Core fields (full name, email,
// phone) are always collected on top of these.
func DefaultFormFields() []FieldDef {
	return []FieldDef{
		{Label: "gender", FieldType: "select", Options: []string{"Male", "Female"}},
		{Label: "state", FieldType: "text"},
		{Label: "organization", FieldType: "text"},
	}
}

// EffectiveSchema resolves the registration form for a program: its own
// fields if any, else the parent master's fields, else the default set.
// parent may be nil for standard and master programs.
func EffectiveSchema(p *Program, parent *Program) []FieldDef {
	if len(p.Registration.FormFields) > 0 {
		return p.Registration.FormFields
	}
	if p.ParentProgram != nil && parent != nil && len(parent.Registration.FormFields) > 0 {
		return parent.Registration.FormFields
	}
	return DefaultFormFields()
}

// Submission is a public registration attempt: the always-present core
// fields plus answers to the program's custom questions keyed by label.
type Submission struct {
	FullName string            `json:"full_name"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone"`
	Answers  map[string]string `json:"answers"`
}

// ValidateSubmission checks a submission against the effective schema.
// Returns a map of field label to message; empty means valid. Rules:
// every required field needs a non-empty answer, select answers must
// match one of the options, and at least one of email or phone must be
// present regardless of per-field requirements.
func ValidateSubmission(fields []FieldDef, sub Submission) map[string]string {
	problems := map[string]string{}

	if sub.FullName == "" {
		problems["full_name"] = "full name is required"
	}
	if sub.Email == "" && sub.Phone == "" {
		problems["contact"] = "at least one of email or phone is required"
	}

	for _, f := range fields {
		answer := sub.Answers[f.Label]
		if f.Required && answer == "" {
			problems[f.Label] = fmt.Sprintf("%s is required", f.Label)
			continue
		}
		if f.FieldType == "select" && answer != "" {
			ok := false
			for _, opt := range f.Options {
				if answer == opt {
					ok = true
					break
				}
			}
			if !ok {
				problems[f.Label] = fmt.Sprintf("%s must be one of the listed options", f.Label)
			}
		}
	}
	return problems
}
