package wire

import (
	"fmt"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
)

// Batch is everything a party has collected for one ceremony stage: one
// envelope per sender that delivered something before the stage timeout.
// Senders absent from the map are treated as "did not send" per spec.md's
// timeout semantics, surfacing later at the corresponding verification
// stage rather than here.
type Batch struct {
	Stage     StageID
	Envelopes map[party.PartyIdx]Envelope
}

// NewBatch creates an empty batch for the given stage.
func NewBatch(stage StageID) *Batch {
	return &Batch{Stage: stage, Envelopes: make(map[party.PartyIdx]Envelope)}
}

// Add records sender's envelope, overwriting any prior envelope from the
// same sender (a sender that re-sends the same stage message, e.g. after a
// retry, replaces rather than duplicates its entry).
func (b *Batch) Add(e Envelope) error {
	if e.Stage != b.Stage {
		return fmt.Errorf("wire: envelope from party %d for stage %s does not belong to batch for stage %s", e.From, e.Stage, b.Stage)
	}
	b.Envelopes[e.From] = e
	return nil
}

// Senders returns the set of parties that contributed to this batch.
func (b *Batch) Senders() []party.PartyIdx {
	out := make([]party.PartyIdx, 0, len(b.Envelopes))
	for idx := range b.Envelopes {
		out = append(out, idx)
	}
	return out
}

// DecodeFailure attributes a decode error to the specific sender whose
// payload caused it. ceremony/runner discards these failures: a sender whose
// payload does not decode is left out of the decoded map, and no
// DeserializationError outcome is raised from them.
type DecodeFailure struct {
	Sender party.PartyIdx
	Err    error
}

func (f DecodeFailure) Error() string {
	return fmt.Sprintf("wire: sender %d: %v", f.Sender, f.Err)
}

// DecodeAll lazily decodes every envelope in a batch with parse, the stage-
// specific unmarshal function. A failure for one sender is recorded in
// failures and does not prevent the rest of the batch from decoding -
// exactly the property a single corrupt message must not have on its N-1
// honest co-senders.
func DecodeAll[T any](b *Batch, parse func([]byte) (T, error)) (decoded map[party.PartyIdx]T, failures []DecodeFailure) {
	decoded = make(map[party.PartyIdx]T, len(b.Envelopes))
	for sender, env := range b.Envelopes {
		v, err := parse(env.Raw)
		if err != nil {
			failures = append(failures, DecodeFailure{Sender: sender, Err: err})
			continue
		}
		decoded[sender] = v
	}
	return decoded, failures
}
