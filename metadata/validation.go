package metadata

import "fmt"

// Validate verifies whether a document is usable by object metadata resolution.
// A positive result (no error returned) means only that the document is
// identifiable.  It does not imply that any attachments it lists actually exist.
//
// Usable
//
// Usable means:
//
// _id is present, and is a non-empty string.
//
// Type, when present, is a string.
//
// _attachments, when present, is a JSON object.
func (d *Document) Validate() error {
	id, ok := d.Fields["_id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("document has no _id")
	}

	if t, ok := d.Fields["Type"]; ok {
		if _, isString := t.(string); !isString {
			return fmt.Errorf("document %s has a non-string Type", id)
		}
	}

	if a, ok := d.Fields[attachmentsField]; ok {
		if _, isObject := a.(map[string]interface{}); !isObject {
			return fmt.Errorf("document %s has malformed _attachments", id)
		}
	}

	return nil
}
