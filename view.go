package objinfo

// View, document type, field and attachment names
const (
	ViewObjectInfoByObjectID   = "object-info-by-object-id"
	ViewModelByObjectIDAndType = "model-by-object-id-and-type"
	DocTypeObject              = "Object"
	DocTypeModel               = "Model"
	ModelTypeMesh              = "mesh"
	FieldID                    = "_id"
	FieldType                  = "Type"
	FieldObjectID              = "object_id"
	FieldModelType             = "model_type"
	FieldObjectName            = "object_name"
	FieldName                  = "name"
	FieldMeshURI               = "mesh_uri"
	AttachmentMesh             = "mesh"
)

// View is a predefined query shape, identified by name, accepting a key and
// an optional model type filter.
type View struct {
	Name      string
	Key       string
	ModelType string
}

// ObjectInfoByObjectID selects the object document of the given object
func ObjectInfoByObjectID(objectID string) View {
	return View{
		Name: ViewObjectInfoByObjectID,
		Key:  objectID,
	}
}

// ModelByObjectIDAndType selects the models of a given type (e.g. "mesh")
// belonging to the given object
func ModelByObjectIDAndType(modelType, objectID string) View {
	return View{
		Name:      ViewModelByObjectIDAndType,
		Key:       objectID,
		ModelType: modelType,
	}
}

// Matches evaluates the view's map function against a document's fields.  Drivers
// for stores without server-side views use this to select documents.
//
// object-info-by-object-id emits Object documents keyed by their _id, while
// model-by-object-id-and-type emits Model documents of the desired model_type,
// keyed by their object_id.
func (v View) Matches(field func(name string) string) bool {
	switch v.Name {
	case ViewObjectInfoByObjectID:
		return field(FieldType) == DocTypeObject && field(FieldID) == v.Key
	case ViewModelByObjectIDAndType:
		return field(FieldType) == DocTypeModel &&
			field(FieldModelType) == v.ModelType &&
			field(FieldObjectID) == v.Key
	default:
		return false
	}
}
