package formclient

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/keycase"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// payload unwraps the {success, data, ...} envelope when present
func payload(body []byte) gjson.Result {
	parsed := gjson.ParseBytes(body)
	if data := parsed.Get("data"); data.Exists() && data.Type != gjson.Null {
		return data
	}
	return parsed
}

// decodeRecord converts one wire item, either a bare record or an
// {id, form_data} wrapper, into a StoredRecord.
func decodeRecord(item gjson.Result) (domain.StoredRecord, error) {
	body := item
	if fd := item.Get("form_data"); fd.IsObject() {
		body = fd
	}
	if !body.IsObject() {
		return domain.StoredRecord{}, fmt.Errorf("form record is not an object")
	}

	var wire map[string]any
	if err := json.Unmarshal([]byte(body.Raw), &wire); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("decode form record: %w", err)
	}
	for _, key := range []string{"id", "created_at", "updated_at"} {
		delete(wire, key)
	}

	buf, err := json.Marshal(keycase.Transform(wire, keycase.ToCamel))
	if err != nil {
		return domain.StoredRecord{}, err
	}
	var rec domain.StoredRecord
	if err := json.Unmarshal(buf, &rec.Record); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("decode form record: %w", err)
	}

	rec.ID = firstString(item, body, "id")
	rec.CreatedAt = parseTimestamp(firstString(item, body, "created_at"))
	rec.UpdatedAt = parseTimestamp(firstString(item, body, "updated_at"))
	rec.AssignEntryIDs()
	rec.EnsureSections()
	return rec, nil
}

func firstString(outer, inner gjson.Result, key string) string {
	if v := outer.Get(key); v.Exists() && v.String() != "" {
		return v.String()
	}
	return inner.Get(key).String()
}

// decodeList accepts a bare array or an envelope whose data is an array
func decodeList(body []byte) ([]domain.StoredRecord, error) {
	data := payload(body)
	if !data.IsArray() {
		return nil, fmt.Errorf("form list response is not an array")
	}
	items := data.Array()
	out := make([]domain.StoredRecord, 0, len(items))
	for i, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// encodeRecord renders the record in the backend's snake_case wire format
func encodeRecord(r *domain.Record) ([]byte, error) {
	buf, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, err
	}
	return json.Marshal(keycase.Transform(m, keycase.ToSnake))
}

// submittedID reads the created/updated record id from a success body
func submittedID(body []byte) string {
	data := payload(body)
	if id := data.Get("id"); id.Exists() {
		return id.String()
	}
	return gjson.GetBytes(body, "id").String()
}
