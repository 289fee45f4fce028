package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeRecordID computes a deterministic record_id using SHA256 for
// extract rows that arrive without a stable upstream identifier.
// Formula: SHA256(stream|owner_id|event_date|row_index)
// Returns hex-encoded hash (64 characters).
func ComputeRecordID(stream, ownerID string, eventDate time.Time, rowIndex int) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		stream,
		ownerID,
		eventDate.Format("2006-01-02"),
		rowIndex,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
