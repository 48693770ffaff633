// internal/workers/headline/normalize-input/models.go
package normalizeinput

import (
	"encoding/json"

	"headline-agent/internal/models"
)

// Request shapes the normalizer understands.
const (
	ModeText   = "text"   // bare string body
	ModeObject = "object" // {"text": ...}
	ModeA2A    = "a2a"    // JSON-RPC 2.0 message/send
)

// Output is the canonical task input plus the correlation data read from the envelope.
type Output struct {
	Request   models.GenerationRequest
	Topic     string
	Mode      string
	RequestID json.RawMessage
	Method    string
	TaskID    string
	MessageID string
	Extractor string
}
