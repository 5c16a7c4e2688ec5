package schema

import (
	"github.com/hermes/backend/internal/domain/crm"
)

// canonicalContracts returns the fixed canonical contracts, one per
// (system, object kind) the engine acts on. The registry extends these with
// custom field specs on every rebuild.
func canonicalContracts() map[contractKey]*Contract {
	contracts := []*Contract{
		pipedriveOrganization(),
		pipedrivePerson(),
		pipedriveDeal(),
		pipedrivePipeline(),
		pipedriveStage(),
		tc2Client(),
	}
	out := make(map[contractKey]*Contract, len(contracts))
	for _, c := range contracts {
		out[contractKey{c.System, c.Kind}] = c
	}
	return out
}

// pipedriveOrganization parses a Pipedrive organization payload into the
// Company shape.
func pipedriveOrganization() *Contract {
	return NewContract(SystemPipedrive, crm.ObjectKindCompany,
		FieldSpec{Name: "id", Key: "id", Kind: FieldInt},
		FieldSpec{Name: "name", Key: "name", Kind: FieldStr, Required: true},
		FieldSpec{Name: "country", Key: "address_country", Kind: FieldStr},
		FieldSpec{Name: "owner_id", Key: "owner_id", Kind: FieldFK,
			Target: crm.ObjectKindAdmin, LookupAttr: "pd_owner_id", Alias: "admin"},
	)
}

// pipedrivePerson parses a Pipedrive person payload into the Contact shape.
// The normalizer has already collapsed email/phone alternative lists to their
// primary value.
func pipedrivePerson() *Contract {
	return NewContract(SystemPipedrive, crm.ObjectKindContact,
		FieldSpec{Name: "id", Key: "id", Kind: FieldInt},
		FieldSpec{Name: "first_name", Key: "first_name", Kind: FieldStr},
		FieldSpec{Name: "last_name", Key: "last_name", Kind: FieldStr},
		FieldSpec{Name: "email", Key: "email", Kind: FieldStr, Rule: "omitempty,email"},
		FieldSpec{Name: "phone", Key: "phone", Kind: FieldStr},
		FieldSpec{Name: "country", Key: "address_country", Kind: FieldStr},
		FieldSpec{Name: "org_id", Key: "org_id", Kind: FieldFK,
			Target: crm.ObjectKindCompany, LookupAttr: "pd_org_id", NullIfInvalid: true},
	)
}

func pipedriveDeal() *Contract {
	return NewContract(SystemPipedrive, crm.ObjectKindDeal,
		FieldSpec{Name: "id", Key: "id", Kind: FieldInt},
		FieldSpec{Name: "title", Key: "title", Kind: FieldStr, Required: true},
		FieldSpec{Name: "status", Key: "status", Kind: FieldStr},
		FieldSpec{Name: "value", Key: "value", Kind: FieldDecimal},
		FieldSpec{Name: "currency", Key: "currency", Kind: FieldStr},
		FieldSpec{Name: "user_id", Key: "user_id", Kind: FieldFK,
			Target: crm.ObjectKindAdmin, LookupAttr: "pd_owner_id", Alias: "admin"},
		FieldSpec{Name: "person_id", Key: "person_id", Kind: FieldFK,
			Target: crm.ObjectKindContact, LookupAttr: "pd_person_id", NullIfInvalid: true},
		FieldSpec{Name: "org_id", Key: "org_id", Kind: FieldFK,
			Target: crm.ObjectKindCompany, LookupAttr: "pd_org_id"},
		FieldSpec{Name: "pipeline_id", Key: "pipeline_id", Kind: FieldFK,
			Target: crm.ObjectKindPipeline, LookupAttr: "pd_pipeline_id"},
		FieldSpec{Name: "stage_id", Key: "stage_id", Kind: FieldFK,
			Target: crm.ObjectKindStage, LookupAttr: "pd_stage_id", NullIfInvalid: true},
	)
}

func pipedrivePipeline() *Contract {
	return NewContract(SystemPipedrive, crm.ObjectKindPipeline,
		FieldSpec{Name: "id", Key: "id", Kind: FieldInt, Required: true},
		FieldSpec{Name: "name", Key: "name", Kind: FieldStr, Required: true},
		FieldSpec{Name: "active", Key: "active", Kind: FieldBool},
	)
}

func pipedriveStage() *Contract {
	return NewContract(SystemPipedrive, crm.ObjectKindStage,
		FieldSpec{Name: "id", Key: "id", Kind: FieldInt, Required: true},
		FieldSpec{Name: "name", Key: "name", Kind: FieldStr, Required: true},
		FieldSpec{Name: "pipeline_id", Key: "pipeline_id", Kind: FieldInt},
	)
}

// tc2Client parses a TC2 client payload (cligency plus nested agency, user
// and paid recipients) into the Company shape. The normalizer has already
// hoisted nested admin IDs and flattened extra_attrs to top-level keys.
func tc2Client() *Contract {
	agency := NewContract(SystemTC2, crm.ObjectKindCompany,
		FieldSpec{Name: "id", Key: "id", Kind: FieldInt, Required: true},
		FieldSpec{Name: "name", Key: "name", Kind: FieldStr, Required: true},
		FieldSpec{Name: "country", Key: "country", Kind: FieldStr},
		FieldSpec{Name: "website", Key: "website", Kind: FieldStr},
		FieldSpec{Name: "status", Key: "status", Kind: FieldStr},
		FieldSpec{Name: "price_plan", Key: "price_plan", Kind: FieldStr},
		FieldSpec{Name: "paid_invoice_count", Key: "paid_invoice_count", Kind: FieldInt},
		FieldSpec{Name: "created", Key: "created", Kind: FieldDate},
	)
	recipient := NewContract(SystemTC2, crm.ObjectKindContact,
		FieldSpec{Name: "id", Key: "id", Kind: FieldInt, Required: true},
		FieldSpec{Name: "first_name", Key: "first_name", Kind: FieldStr},
		FieldSpec{Name: "last_name", Key: "last_name", Kind: FieldStr, Required: true},
		FieldSpec{Name: "email", Key: "email", Kind: FieldStr, Rule: "omitempty,email"},
		FieldSpec{Name: "phone", Key: "phone", Kind: FieldStr},
	)
	user := NewContract(SystemTC2, crm.ObjectKindContact,
		FieldSpec{Name: "email", Key: "email", Kind: FieldStr},
		FieldSpec{Name: "first_name", Key: "first_name", Kind: FieldStr},
		FieldSpec{Name: "last_name", Key: "last_name", Kind: FieldStr},
	)
	return NewContract(SystemTC2, crm.ObjectKindCompany,
		FieldSpec{Name: "id", Key: "id", Kind: FieldInt, Required: true},
		FieldSpec{Name: "status", Key: "status", Kind: FieldStr},
		FieldSpec{Name: "narc", Key: "narc", Kind: FieldBool},
		FieldSpec{Name: "sales_person_id", Key: "sales_person_id", Kind: FieldFK,
			Target: crm.ObjectKindAdmin, LookupAttr: "tc2_admin_id", Alias: "sales_person", NullIfInvalid: true},
		FieldSpec{Name: "associated_admin_id", Key: "associated_admin_id", Kind: FieldFK,
			Target: crm.ObjectKindAdmin, LookupAttr: "tc2_admin_id", Alias: "support_person", NullIfInvalid: true},
		FieldSpec{Name: "bdr_person_id", Key: "bdr_person_id", Kind: FieldFK,
			Target: crm.ObjectKindAdmin, LookupAttr: "tc2_admin_id", Alias: "bdr_person", NullIfInvalid: true},
		FieldSpec{Name: "meta_agency", Key: "meta_agency", Kind: FieldObject, Nested: agency},
		FieldSpec{Name: "user", Key: "user", Kind: FieldObject, Nested: user},
		FieldSpec{Name: "paid_recipients", Key: "paid_recipients", Kind: FieldList, Nested: recipient},
	)
}
