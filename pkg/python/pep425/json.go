package pep425

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler; a Tag serializes as its string form.
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseTag(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
