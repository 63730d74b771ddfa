package types

import (
	"database/sql/driver"
	"encoding/json"
)

// ShippingInfo carries the buyer-provided delivery details recorded on each
// order. The engine treats it as opaque beyond basic shape validation.
type ShippingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Line1   string `json:"line1,omitempty"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// Value serializes the shipping info to JSON.
func (s *ShippingInfo) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the shipping info struct.
func (s *ShippingInfo) Scan(value interface{}) error {
	if value == nil {
		*s = ShippingInfo{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}
