package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// ErrEmptyTicker means the payload decoded but carried no usable symbol.
var ErrEmptyTicker = errors.New("empty ticker in message")

// Decode turns a raw channel payload into a TickerEvent.
//
// The publisher side is not under our control and emits two shapes: a JSON
// object with at least a "ticker" field, or a bare string symbol. A JSON
// object is tried first; anything else falls back to the bare-string path.
// Action defaults to "add" in both shapes.
func Decode(payload []byte) (models.TickerEvent, error) {
	if isJSONObject(payload) {
		var evt models.TickerEvent
		if err := json.Unmarshal(payload, &evt); err == nil {
			evt.Ticker = strings.ToUpper(strings.TrimSpace(evt.Ticker))
			if evt.Ticker == "" {
				return models.TickerEvent{}, ErrEmptyTicker
			}
			if evt.Action == "" {
				evt.Action = models.ActionAdd
			}
			return evt, nil
		}
		// Malformed object: treat like any other unstructured payload.
	}

	ticker := strings.ToUpper(strings.TrimSpace(string(payload)))
	if ticker == "" {
		return models.TickerEvent{}, ErrEmptyTicker
	}
	return models.TickerEvent{Ticker: ticker, Action: models.ActionAdd}, nil
}

func isJSONObject(payload []byte) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
