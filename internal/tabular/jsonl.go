package tabular

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonRecord is the JSON Lines shape of a record. Attributes keep the
// record's omit policy: names without an active value are absent.
type jsonRecord struct {
	ID         int64             `json:"id"`
	Plant      string            `json:"plant"`
	Scope      string            `json:"scope"`
	Type       string            `json:"type"`
	EType      string            `json:"etype"`
	EID        string            `json:"eid"`
	Created    string            `json:"created"`
	Terminated string            `json:"terminated"`
	Attributes map[string]string `json:"attributes"`
}

// WriteJSONL writes one JSON object per record, in history order.
func WriteJSONL(w io.Writer, h *history.History, opts WriteOptions) error {
	enc := json.NewEncoder(w)
	for i, r := range h.Records {
		rec := jsonRecord{
			ID:         r.ObjectID,
			Plant:      r.Plant,
			Scope:      r.Scope,
			Type:       r.Type,
			EType:      r.EType,
			EID:        r.EID,
			Created:    ir.FormatInstant(r.Created, opts.OpenEndedLabel),
			Terminated: ir.FormatInstant(r.Terminated, opts.OpenEndedLabel),
			Attributes: r.Attributes,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return nil
}
