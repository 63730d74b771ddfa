package outbox

import (
	"encoding/json"
	"time"
)

// BuyerRef identifies the wallet that triggered the event.
type BuyerRef struct {
	WalletAddress string `json:"walletAddress,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Buyer      *BuyerRef       `json:"buyer,omitempty"`
	Data       json.RawMessage `json:"data"`
}
