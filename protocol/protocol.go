package protocol

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tasgo-io/tasgo/command"
)

// Protocol sends commands to one device over some transport.
//
// Implementations are safe for concurrent use; commands to the same
// device are serialised internally so replies cannot be misattributed.
type Protocol interface {
	// SendCommand sends cmd and waits for the device's reply.
	//
	// For aggregated commands the reply is the merge of the received
	// fragments; if the collection window closes with fragments missing,
	// the merged response is returned together with an error wrapping
	// ErrPartialAggregate.
	SendCommand(ctx context.Context, cmd command.Command) (*CommandResponse, error)

	// SendRaw sends a literal "Name Payload" command line.
	SendRaw(ctx context.Context, line string) (*CommandResponse, error)

	// Close releases the transport resources held for this device.
	Close() error
}

// CommandResponse is the reply to one command.
type CommandResponse struct {
	// Request is the command line that produced this reply.
	Request string

	// Body is the raw JSON reply. For aggregated replies it is the
	// key-level merge of the received fragments, later fragments
	// overwriting earlier ones.
	Body []byte

	// Fragments holds the raw payload of each received fragment by
	// stat topic suffix. Nil for single replies.
	Fragments map[string][]byte

	// missing lists the expected fragments that never arrived.
	missing []string
}

// Decode unmarshals the response body into v.
func (r *CommandResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("protocol: decode response to %q: %w", r.Request, err)
	}
	return nil
}

// Partial reports whether this is an aggregated reply with fragments
// missing.
func (r *CommandResponse) Partial() bool {
	return len(r.missing) > 0
}

// Missing returns the expected fragment suffixes that never arrived.
func (r *CommandResponse) Missing() []string {
	return r.missing
}

// NewResponse builds a single-message response.
func NewResponse(request string, body []byte) *CommandResponse {
	return &CommandResponse{Request: request, Body: body}
}

// NewAggregatedResponse builds a multi-fragment response. The body is
// the key-level merge of the fragments in arrival order; missing lists
// the expected suffixes that did not arrive.
//
// A fragment that is not a JSON object contributes no keys: it is
// skipped and its suffix is added to Missing, so one garbled fragment
// never costs the caller the ones that parsed.
func NewAggregatedResponse(request string, fragments map[string][]byte, order, missing []string) *CommandResponse {
	merged, skipped := mergeFragments(fragments, order)
	if len(skipped) > 0 {
		missing = append(append([]string(nil), missing...), skipped...)
	}
	return &CommandResponse{
		Request:   request,
		Body:      merged,
		Fragments: fragments,
		missing:   missing,
	}
}

// mergeFragments unions the top-level keys of each fragment, in arrival
// order so later fragments win on key collisions. Fragments that do not
// decode as objects are reported in skipped.
func mergeFragments(fragments map[string][]byte, order []string) (body []byte, skipped []string) {
	merged := make(map[string]json.RawMessage)
	for _, suffix := range order {
		payload, ok := fragments[suffix]
		if !ok {
			continue
		}
		var top map[string]json.RawMessage
		if err := json.Unmarshal(payload, &top); err != nil {
			skipped = append(skipped, suffix)
			continue
		}
		for k, v := range top {
			merged[k] = v
		}
	}
	// Marshalling a map of already-validated raw messages cannot fail.
	body, _ = json.Marshal(merged)
	return body, skipped
}
