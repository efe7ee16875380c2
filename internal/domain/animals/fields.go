package animals

import "foster-tracker/internal/query"

// Columnas de animals / animal_groups. Coinciden con el schema SQL.
const (
	FieldName                query.Field = "name"
	FieldDescription         query.Field = "description"
	FieldStatus              query.Field = "status"
	FieldSexSpayNeuterStatus query.Field = "sex_spay_neuter_status"
	FieldLifeStage           query.Field = "life_stage"
	FieldPriority            query.Field = "priority"
	FieldFosterVisibility    query.Field = "foster_visibility"
	FieldGroupID             query.Field = "group_id"
	FieldCurrentFosterID     query.Field = "current_foster_id"
	FieldDateOfBirth         query.Field = "date_of_birth"
)

// Campos derivados de un grupo: no existen en la base, se calculan a partir
// de los miembros.
const (
	FieldGroupVisibility  query.Field = "group_visibility"
	FieldMemberLifeStages query.Field = "member_life_stages"
)

func (a Animal) FieldValue(f query.Field) any {
	switch f {
	case query.FieldID:
		return a.ID
	case query.FieldOrganizationID:
		return a.OrganizationID
	case query.FieldCreatedAt:
		return a.CreatedAt
	case FieldName:
		return a.Name
	case FieldStatus:
		return string(a.Status)
	case FieldSexSpayNeuterStatus:
		if a.SexSpayNeuterStatus == "" {
			return nil
		}
		return string(a.SexSpayNeuterStatus)
	case FieldLifeStage:
		return string(a.LifeStage)
	case FieldPriority:
		return a.Priority
	case FieldFosterVisibility:
		return string(a.FosterVisibility)
	case FieldGroupID:
		return query.OptionalString(a.GroupID)
	case FieldCurrentFosterID:
		return query.OptionalString(a.CurrentFosterID)
	case FieldDateOfBirth:
		if a.DateOfBirth == nil {
			return nil
		}
		return *a.DateOfBirth
	default:
		return nil
	}
}

func (g Group) FieldValue(f query.Field) any {
	switch f {
	case query.FieldID:
		return g.ID
	case query.FieldOrganizationID:
		return g.OrganizationID
	case query.FieldCreatedAt:
		return g.CreatedAt
	case FieldName:
		return g.Name
	case FieldDescription:
		return g.Description
	case FieldPriority:
		return g.Priority
	case FieldCurrentFosterID:
		return query.OptionalString(g.CurrentFosterID)
	default:
		return nil
	}
}
