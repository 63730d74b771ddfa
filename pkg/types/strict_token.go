package types

import (
	"database/sql/driver"
	"encoding/json"
)

// StrictToken is the collection-level configuration forcing all payments for
// its products into one specific fungible token.
type StrictToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// Value serializes the strict token config to JSON.
func (s *StrictToken) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the strict token config.
func (s *StrictToken) Scan(value interface{}) error {
	if value == nil {
		*s = StrictToken{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}
