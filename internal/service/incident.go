package service

import (
	"time"

	"github.com/oklog/ulid/v2"
)

const incidentPrefix = "KRW-"

// NewIncidentID builds the display token handed to a reporter. It is sortable
// by submission time and carries random bits, but it is not the record key.
func NewIncidentID(now time.Time) string {
	return incidentPrefix + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}
