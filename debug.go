package animgif

import (
	"encoding/json"

	"github.com/tidwall/pretty"
)

// debug.go gives callers a human-readable dump of an Encoder's accumulated
// EncoderStats, for logging/debugging during development.

// DebugSummary renders the Encoder's current EncoderStats as indented,
// ANSI-colored JSON, suitable for printing to a terminal during
// development. Not part of the encoding algorithm; purely observational.
func (e *Encoder) DebugSummary() (string, error) {
	raw, err := json.Marshal(e.stats)
	if err != nil {
		return "", wrapError(IoError, "failed to marshal encoder stats", err)
	}
	formatted := pretty.Pretty(raw)
	colored := pretty.Color(formatted, nil)
	return string(colored), nil
}
