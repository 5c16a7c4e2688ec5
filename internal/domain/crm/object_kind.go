package crm

// ObjectKind discriminates the entity types the sync engine acts on.
type ObjectKind string

const (
	ObjectKindAdmin    ObjectKind = "admin"
	ObjectKindCompany  ObjectKind = "company"
	ObjectKindContact  ObjectKind = "contact"
	ObjectKindDeal     ObjectKind = "deal"
	ObjectKindPipeline ObjectKind = "pipeline"
	ObjectKindStage    ObjectKind = "stage"
	ObjectKindMeeting  ObjectKind = "meeting"
)

// CustomFieldKinds returns the object kinds that may carry custom field
// definitions.
func CustomFieldKinds() []ObjectKind {
	return []ObjectKind{ObjectKindCompany, ObjectKindContact, ObjectKindDeal, ObjectKindMeeting}
}

// DisplayName returns the capitalised entity name used in error messages,
// e.g. "Admin with pd_owner_id 999 does not exist".
func (k ObjectKind) DisplayName() string {
	switch k {
	case ObjectKindAdmin:
		return "Admin"
	case ObjectKindCompany:
		return "Company"
	case ObjectKindContact:
		return "Contact"
	case ObjectKindDeal:
		return "Deal"
	case ObjectKindPipeline:
		return "Pipeline"
	case ObjectKindStage:
		return "Stage"
	case ObjectKindMeeting:
		return "Meeting"
	}
	return string(k)
}
