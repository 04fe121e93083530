// Package rpctransport supplies the JSON-over-grpc plumbing both
// rpcwitness and rpcops build their service on: a grpc/encoding.Codec
// registered under the protobuf codec's name, and the ErrUnexpectedType
// helper their hand-authored grpc.ServiceDesc handlers return. The
// ServiceDescs themselves live in each service package.
//
// Real protoc-generated messages need protoreflect descriptors this
// module has no way to hand-author correctly without running protoc,
// which the build process here never invokes; grpc-go's custom-codec
// hook (encoding.RegisterCodec) is the documented escape hatch for
// exactly this - a server/client pair agreeing on a codec by name -
// so both RPC surfaces use it with plain Go structs in place of
// generated messages.
package rpctransport

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName overrides grpc-go's built-in "proto" codec for this process.
const codecName = "proto"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// ErrUnexpectedType is returned by generated-style handler functions if
// grpc-go ever hands them a message of the wrong concrete type (should be
// unreachable, since each handler only ever decodes into its own request
// type).
func ErrUnexpectedType(got interface{}) error {
	return fmt.Errorf("rpctransport: unexpected message type %T", got)
}
