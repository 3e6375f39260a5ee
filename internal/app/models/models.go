package models

// Role is the single role a user holds
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleHR     Role = "hr"
	RoleTutor  Role = "tutor"
	RoleIntern Role = "intern"
)

// AllRoles lists every role in descending privilege order
var AllRoles = []Role{RoleAdmin, RoleHR, RoleTutor, RoleIntern}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleTutor, RoleIntern:
		return true
	}
	return false
}

// InternStatus is the lifecycle flag of an internship
type InternStatus string

const (
	InternStatusActive    InternStatus = "active"
	InternStatusDone      InternStatus = "done"
	InternStatusSuspended InternStatus = "suspended"
)

// RequestStatus values are validated but transitions between them are free
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusApproved   RequestStatus = "approved"
	RequestStatusRejected   RequestStatus = "rejected"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusDone       RequestStatus = "done"
)

// Label is the human readable form used in notifications
func (s RequestStatus) Label() string {
	switch s {
	case RequestStatusPending:
		return "pending"
	case RequestStatusApproved:
		return "approved"
	case RequestStatusRejected:
		return "rejected"
	case RequestStatusInProgress:
		return "in progress"
	case RequestStatusDone:
		return "completed"
	}
	return string(s)
}

// RequestType classifies what an intern is asking for
type RequestType string

const (
	RequestTypeLeave     RequestType = "leave"
	RequestTypeDocument  RequestType = "document"
	RequestTypeExtension RequestType = "extension"
	RequestTypeEquipment RequestType = "equipment"
	RequestTypeOther     RequestType = "other"
)

// PlanningKind classifies a planning entry
type PlanningKind string

const (
	PlanningKindTask      PlanningKind = "task"
	PlanningKindMeeting   PlanningKind = "meeting"
	PlanningKindMilestone PlanningKind = "milestone"
)

// TemplateKind classifies document templates
type TemplateKind string

const (
	TemplateKindAttestation TemplateKind = "attestation"
	TemplateKindConvention  TemplateKind = "convention"
	TemplateKindCustom      TemplateKind = "custom"
)
