package usecase

import "github.com/kirillkom/docmeta/internal/core/domain"

func classificationSchema() *domain.SchemaDescriptor {
	return &domain.SchemaDescriptor{
		Name: "document_classification",
		Properties: []domain.SchemaField{
			{Name: "type", Kind: domain.KindString, Required: true},
			{Name: "confidence", Kind: domain.KindNumber, Required: true},
		},
	}
}

func discoverySchema() *domain.SchemaDescriptor {
	return &domain.SchemaDescriptor{
		Name: "field_discovery",
		Properties: []domain.SchemaField{
			{Name: "suggested_fields", Kind: domain.KindArray, Required: true, Items: &domain.SchemaField{Kind: domain.KindString}},
			{Name: domain.SummaryField, Kind: domain.KindString, Required: true},
		},
	}
}

var lineItemSchema = domain.SchemaField{
	Kind: domain.KindObject,
	Properties: []domain.SchemaField{
		{Name: "description", Kind: domain.KindString, Required: true},
		{Name: "quantity", Kind: domain.KindNumber, Nullable: true},
		{Name: "unit_price", Kind: domain.KindNumber, Nullable: true},
		{Name: "total", Kind: domain.KindNumber, Nullable: true},
	},
}

var listItemSchema = domain.SchemaField{Kind: domain.KindScalar}

// extractionSchema makes every field optional and nullable. isList marks
// fields that hold arrays of scalars.
func extractionSchema(fields []string, isList func(string) bool) *domain.SchemaDescriptor {
	props := make([]domain.SchemaField, 0, len(fields))
	for _, name := range fields {
		field := domain.SchemaField{Name: name, Kind: domain.KindScalar, Nullable: true}
		switch {
		case name == domain.LineItemsField:
			item := lineItemSchema
			field.Kind = domain.KindArray
			field.Items = &item
		case isList != nil && isList(name):
			item := listItemSchema
			field.Kind = domain.KindArray
			field.Items = &item
		}
		props = append(props, field)
	}
	return &domain.SchemaDescriptor{Name: "metadata_extraction", Properties: props}
}
