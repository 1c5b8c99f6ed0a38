package seed

import (
	_ "embed"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DemoFormID is the id of the primary demo record
const DemoFormID = "demo-form-id"

//go:embed demo_forms.json
var demoForms []byte

// DemoForms returns the demo dataset in the backend wire format: a JSON
// array mixing bare records and {id, form_data} items.
func DemoForms() []byte {
	out := make([]byte, len(demoForms))
	copy(out, demoForms)
	return out
}

// DemoForm returns the primary demo record carrying the requested id, so a
// detail or edit page for any id renders something.
func DemoForm(id string) ([]byte, error) {
	raw := gjson.GetBytes(demoForms, "0").Raw
	if raw == "" {
		return nil, fmt.Errorf("demo dataset is empty")
	}
	if id == "" {
		id = DemoFormID
	}
	return sjson.SetBytes([]byte(raw), "id", id)
}
