package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRecord  = "snaphist/record/v1"
	DomainHistory = "snaphist/history/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordHash computes the content hash of a single snapshot record.
func RecordHash(r Record) (string, error) {
	canonical, err := MarshalCanonical(r.ToIR())
	if err != nil {
		return "", fmt.Errorf("RecordHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// HistoryHash computes the content hash of a whole reconstruction: the
// column set plus every record in output order. Two runs over the same
// input must produce the same hash.
func HistoryHash(columns []string, records []Record) (string, error) {
	recs := make(IRArray, len(records))
	for i, r := range records {
		recs[i] = r.ToIR()
	}
	obj := IRObject{
		"schema_version": IRString(SchemaVersion),
		"columns":        StringArray(columns),
		"records":        recs,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("HistoryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainHistory, canonical), nil
}

// MustHistoryHash is like HistoryHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustHistoryHash(columns []string, records []Record) string {
	h, err := HistoryHash(columns, records)
	if err != nil {
		panic(err)
	}
	return h
}
