// Package events carries the typed event catalogue emitted across a
// broadcast's lifecycle (spec.md §6.5) out of the core to the off-chain
// signer / CFE event sink, which spec.md §1 treats as an opaque sink: "the
// CFE... treated as an event sink, not simulated".
//
// Grounded on htlcswitch/mock.go's channel-based mock transport shape for
// the in-memory Sink used by tests, and on the teacher's direct
// gorilla/websocket dependency for the real transport.
package events

import (
	"encoding/json"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/gorilla/websocket"
	"github.com/lightningnetwork/lnd/queue"
)

// Event is the marker every event catalogue entry satisfies. Go has no
// sum-type mechanism as neat as the Rust pallet's Event enum, so the
// catalogue is instead a set of concrete struct types a Sink type-switches
// on if it needs to (the JSON sink below just encodes whatever it's
// given).
type Event interface {
	// Name returns the event's catalogue name, used for metrics labels
	// and log lines.
	Name() string
}

// TransactionBroadcastRequest is emitted by start_broadcast_attempt
// (spec.md §4.5 step 5).
type TransactionBroadcastRequest struct {
	BroadcastID chains.BroadcastID
	Nominee     chains.AccountID
	Payload     chains.Payload
	TxOutID     chains.TransactionOutID
}

func (TransactionBroadcastRequest) Name() string { return "TransactionBroadcastRequest" }

// BroadcastRetryScheduled is emitted whenever a broadcast attempt is
// deferred into the retry queue.
type BroadcastRetryScheduled struct {
	BroadcastID chains.BroadcastID
	RetryBlock  uint64
}

func (BroadcastRetryScheduled) Name() string { return "BroadcastRetryScheduled" }

// BroadcastTimeout is emitted when a nominee's broadcast attempt times out.
type BroadcastTimeout struct {
	BroadcastID chains.BroadcastID
	Nominee     chains.AccountID
}

func (BroadcastTimeout) Name() string { return "BroadcastTimeout" }

// BroadcastAborted is emitted when every authority reports failure for a
// broadcast.
type BroadcastAborted struct {
	BroadcastID chains.BroadcastID
}

func (BroadcastAborted) Name() string { return "BroadcastAborted" }

// BroadcastSuccess is emitted once a broadcast is witnessed successful
// (spec.md §4.5 step 9).
type BroadcastSuccess struct {
	BroadcastID      chains.BroadcastID
	TransactionOutID chains.TransactionOutID
	TransactionRef   string
}

func (BroadcastSuccess) Name() string { return "BroadcastSuccess" }

// ThresholdSignatureInvalid is emitted when start_next_broadcast_attempt
// finds a pending call's signature no longer valid under the current
// on-chain key.
type ThresholdSignatureInvalid struct {
	BroadcastID chains.BroadcastID
}

func (ThresholdSignatureInvalid) Name() string { return "ThresholdSignatureInvalid" }

// BroadcastCallbackExecuted is emitted after a caller-registered success or
// failure callback runs.
type BroadcastCallbackExecuted struct {
	BroadcastID chains.BroadcastID
	Succeeded   bool
}

func (BroadcastCallbackExecuted) Name() string { return "BroadcastCallbackExecuted" }

// TransactionFeeDeficitRecorded is emitted when fee.Ledger.VerifyAndRecord
// succeeds.
type TransactionFeeDeficitRecorded struct {
	BroadcastID chains.BroadcastID
	Signer      string
}

func (TransactionFeeDeficitRecorded) Name() string { return "TransactionFeeDeficitRecorded" }

// TransactionFeeDeficitRefused is emitted when the witnessed metadata
// fails to verify against what was stored at dispatch time.
type TransactionFeeDeficitRefused struct {
	BroadcastID chains.BroadcastID
}

func (TransactionFeeDeficitRefused) Name() string { return "TransactionFeeDeficitRefused" }

// CallResigned is emitted by re_sign_broadcast.
type CallResigned struct {
	BroadcastID chains.BroadcastID
}

func (CallResigned) Name() string { return "CallResigned" }

// ConfigUpdated mirrors the original pallet's PalletConfigUpdate /
// PalletConfigUpdated distinction (a supplemented feature: a typed event
// carrying the update, not just the raw config struct).
type ConfigUpdated struct {
	Update interface{}
}

func (ConfigUpdated) Name() string { return "PalletConfigUpdated" }

// Sink is anything events can be published to.
type Sink interface {
	Emit(Event)
}

// MemorySink collects every emitted event in order, for use in tests
// (htlcswitch/mock.go's mock-transport role: record instead of transmit).
type MemorySink struct {
	mu   sync.Mutex
	seen []Event
}

// NewMemorySink constructs an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) Emit(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, e)
}

// All returns every event recorded so far, in emission order.
func (m *MemorySink) All() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.seen))
	copy(out, m.seen)
	return out
}

// WebSocketSink frames every event as JSON and writes it to a single
// persistent connection to the off-chain signer / CFE, matching the
// teacher's direct gorilla/websocket dependency. Emit never blocks on the
// socket: events are handed to an unbounded queue.ConcurrentQueue and
// written by a single background goroutine, the same producer/consumer
// split peer.go uses to keep its outgoing message queue from stalling a
// slow or momentarily-disconnected peer.
type WebSocketSink struct {
	conn *websocket.Conn
	log  btclog.Logger
	out  *queue.ConcurrentQueue
}

// NewWebSocketSink wraps an already-established websocket connection and
// starts its outbound writer goroutine. Stop must be called to release it.
func NewWebSocketSink(conn *websocket.Conn, log btclog.Logger) *WebSocketSink {
	w := &WebSocketSink{
		conn: conn,
		log:  log,
		out:  queue.NewConcurrentQueue(50),
	}
	w.out.Start()
	go w.writeLoop()
	return w
}

// Stop drains and shuts down the outbound writer. No further Emit calls may
// be made afterward.
func (w *WebSocketSink) Stop() {
	w.out.Stop()
}

func (w *WebSocketSink) writeLoop() {
	for item := range w.out.ChanOut() {
		e := item.(Event)

		raw, err := json.Marshal(struct {
			Type string `json:"type"`
			Data Event  `json:"data"`
		}{Type: e.Name(), Data: e})
		if err != nil {
			w.log.Errorf("events: failed to marshal %s: %v", e.Name(), err)
			continue
		}
		if err := w.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			w.log.Errorf("events: failed to write %s: %v", e.Name(), err)
		}
	}
}

func (w *WebSocketSink) Emit(e Event) {
	w.out.ChanIn() <- e
}
