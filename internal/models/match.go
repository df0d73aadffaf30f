package models

import (
	"bytes"
	"encoding/json"
)

// NotApplicable is the page value the server uses for line-based matches
const NotApplicable = "N/A"

// Position holds a page or line indicator. The server sends either a number
// or a string such as "N/A".
type Position string

// UnmarshalJSON accepts numbers, strings and null
func (p *Position) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Position(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Position(n.String())
	return nil
}

// IsSet reports whether the position carries a usable value
func (p Position) IsSet() bool {
	return p != "" && p != "0" && p != NotApplicable
}

func (p Position) String() string {
	return string(p)
}

// MatchRecord is one search hit as returned by the server
type MatchRecord struct {
	File    string   `json:"file"`    // Bare file name
	Path    string   `json:"path"`    // Display path
	Page    Position `json:"page"`    // Page indicator for paginated documents
	Line    Position `json:"line"`    // Line indicator for text documents
	Preview string   `json:"preview"` // Highlighted snippet
}
