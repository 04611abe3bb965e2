package payslip

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexID decodes an identifier that portals send either as a JSON number
// or as a string. It always holds the decimal string form.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier %s: %w", data, err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = FlexID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = FlexID(n.String())
	return nil
}

// String returns the identifier.
func (id FlexID) String() string {
	return string(id)
}
