// Package verify implements the ceremony's one broadcast-verification
// algorithm, reused at stages 2, 4, 7 and 9: every party rebroadcasts the
// vector of per-sender values it claims to have received in the prior
// stage, and a sender's value is accepted only once a strict majority of
// those rebroadcast vectors agree on it. Grounded on
// htlcswitch/switch_control.go's sentinel-error-per-outcome style for the
// Inconsistency/InsufficientMessages split, and on discovery/validation.go's
// use of github.com/go-errors/errors for attributable verification
// failures, generalized with Go generics so one implementation serves
// every stage's payload type instead of one validate*Ann function per
// message.
package verify

import (
	"sort"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/wire"
	"github.com/go-errors/errors"
)

// ErrNoVerifiers is returned when a verification round has no rebroadcast
// vectors to work from at all - distinct from InsufficientMessages, which
// is reported per-sender once at least one verifier participated.
var ErrNoVerifiers = errors.New("verify: no verifier vectors supplied")

// FailureKind distinguishes the two ways a sender can fail broadcast
// verification (spec.md's exhaustive failure taxonomy).
type FailureKind int

const (
	// Inconsistency: a strict majority of verifiers disagree on the
	// sender's value (or agree on nothing), after enough of them
	// reported a value for that sender to have reached a majority.
	Inconsistency FailureKind = iota
	// InsufficientMessages: fewer than a majority of verifiers even
	// claim to have received a value from the sender.
	InsufficientMessages
)

func (k FailureKind) String() string {
	switch k {
	case Inconsistency:
		return "Inconsistency"
	case InsufficientMessages:
		return "InsufficientMessages"
	default:
		return "Unknown"
	}
}

// Failure reports one sender that failed broadcast verification at a given
// stage. The ceremony runner copies Sender into FailureResult.Blamed as a
// PartyIdx; it does not translate it into an AccountId.
type Failure struct {
	Sender party.PartyIdx
	Kind   FailureKind
	Stage  wire.StageID
}

func (f Failure) Error() string {
	return errors.Errorf("verify: stage %s: sender %d: %s", f.Stage, f.Sender, f.Kind).Error()
}

// Verify runs the majority-vote broadcast verification. claims maps each
// verifier's PartyIdx to the vector of (sender -> value) it claims to have
// received; equal reports whether two values are the same, since T is not
// assumed to be comparable (it is typically a scheme.Point or a decoded
// stage struct). It returns the majority-accepted value per sender and the
// Failures for senders that didn't reach one.
//
// Per spec.md, verifiers that fail to participate in the verification
// stage itself are never reported - only senders are ever named here.
func Verify[T any](stage wire.StageID, claims map[party.PartyIdx]map[party.PartyIdx]T, equal func(a, b T) bool) (map[party.PartyIdx]T, []Failure, error) {
	if len(claims) == 0 {
		return nil, nil, ErrNoVerifiers
	}

	majority := len(claims)/2 + 1

	allSenders := make(map[party.PartyIdx]struct{})
	for _, vec := range claims {
		for sender := range vec {
			allSenders[sender] = struct{}{}
		}
	}

	accepted := make(map[party.PartyIdx]T)
	var failures []Failure

	for sender := range allSenders {
		value, count, total := majorityValue(claims, sender, equal)

		switch {
		case total < majority:
			failures = append(failures, Failure{Sender: sender, Kind: InsufficientMessages, Stage: stage})
		case count < majority:
			failures = append(failures, Failure{Sender: sender, Kind: Inconsistency, Stage: stage})
		default:
			accepted[sender] = value
		}
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Sender < failures[j].Sender })

	return accepted, failures, nil
}

// majorityValue tallies every verifier's claimed value for sender, returning
// the most-agreed-upon value, its vote count, and the total number of
// verifiers that had any entry for sender at all.
func majorityValue[T any](claims map[party.PartyIdx]map[party.PartyIdx]T, sender party.PartyIdx, equal func(a, b T) bool) (winner T, winnerCount int, total int) {
	type tally struct {
		value T
		count int
	}
	var tallies []tally

	for _, vec := range claims {
		v, ok := vec[sender]
		if !ok {
			continue
		}
		total++

		matched := false
		for i := range tallies {
			if equal(tallies[i].value, v) {
				tallies[i].count++
				matched = true
				break
			}
		}
		if !matched {
			tallies = append(tallies, tally{value: v, count: 1})
		}
	}

	for _, t := range tallies {
		if t.count > winnerCount {
			winner, winnerCount = t.value, t.count
		}
	}
	return winner, winnerCount, total
}
