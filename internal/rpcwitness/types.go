// Package rpcwitness exposes the witness-origin calls (spec.md §6.6:
// transaction_succeeded, transaction_failed) as a grpc service, the same
// thin-handler-delegates-to-core shape rpcserver.go uses for
// rpcServer/lnrpc.LightningServer.
//
// The real lnrpc convention commits protoc-generated pb.go files alongside
// the .proto source. Without a protoc invocation available here, this
// package instead registers its request/response types (witness.proto's
// Go shadow, see types.go) against the JSON-over-grpc codec
// internal/rpctransport registers - real grpc framing and interceptors
// (go-grpc-prometheus included), just
// without a protobuf-wire-format payload. witness.proto remains the
// canonical wire contract for a future protoc-gen-go pass.
package rpcwitness

// TransactionSucceededRequest mirrors witness.proto's message of the same
// name.
type TransactionSucceededRequest struct {
	ChainID    uint32 `json:"chain_id"`
	TxOutID    []byte `json:"tx_out_id"`
	Signer     string `json:"signer"`
	TxFee      []byte `json:"tx_fee"`
	TxMetadata []byte `json:"tx_metadata"`
	TxRef      string `json:"tx_ref"`
}

// TransactionFailedRequest mirrors witness.proto's message of the same
// name.
type TransactionFailedRequest struct {
	ChainID     uint32 `json:"chain_id"`
	Origin      []byte `json:"origin"`
	BroadcastID uint64 `json:"broadcast_id"`
}

// WitnessAck mirrors witness.proto's message of the same name.
type WitnessAck struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}
