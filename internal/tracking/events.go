package tracking

import (
	"encoding/json"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
)

// Inbound dashboard message envelope. Only Type is inspected up front;
// the payload is re-parsed per message kind.
type inboundMessage struct {
	Type       string `json:"type"`
	DeviceID   string `json:"device_id"`
	DeviceType string `json:"device_type"`
	CaseID     string `json:"case_id"`
}

// relayFrame is the only frame shape the external relay is expected to
// produce. Anything else is ignored.
type relayFrame struct {
	Type string `json:"type"`
	Data struct {
		Parameters struct {
			Location *relayLocation  `json:"location"`
			User     json.RawMessage `json:"user"`
		} `json:"parameters"`
	} `json:"data"`
}

// relayLocation uses pointer fields so a frame missing either
// coordinate can be told apart from one at (0, 0).
type relayLocation struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
	Alt *float64 `json:"alt"`
}

type registrationSuccessEvent struct {
	Type     string `json:"type"`
	DeviceID string `json:"device_id"`
	Message  string `json:"message"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type locationUpdateEvent struct {
	Type      string          `json:"type"`
	DeviceID  string          `json:"device_id"`
	Location  locationPayload `json:"location"`
	User      json.RawMessage `json:"user"`
	Timestamp string          `json:"timestamp"`
}

type locationPayload struct {
	Lat float64  `json:"lat"`
	Lon float64  `json:"lon"`
	Alt *float64 `json:"alt,omitempty"`
}

type alertEvent struct {
	Type  string       `json:"type"`
	Alert domain.Alert `json:"alert"`
}
