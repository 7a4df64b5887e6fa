package tasks

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// EncodePayload canonicalizes payload through structpb.Struct when a
// queued handle dispatches it (Open Question 2: the queue boundary always
// round-trips through a real wire-shaped value). Byte-slice fields are
// base64-encoded, since structpb has no native bytes kind.
func EncodePayload(payload Payload) (*structpb.Struct, error) {
	wire := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		wire[k] = encodeValue(v)
	}
	s, err := structpb.NewStruct(wire)
	if err != nil {
		return nil, fmt.Errorf("tasks: encode payload: %w", err)
	}
	return s, nil
}

// DecodePayload reverses EncodePayload, restoring base64-tagged fields to
// []byte.
func DecodePayload(s *structpb.Struct) Payload {
	out := make(Payload, len(s.GetFields()))
	for k, v := range s.AsMap() {
		out[k] = decodeValue(v)
	}
	return out
}

const byteTagPrefix = "\x00bytes:"

func encodeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case []byte:
		return byteTagPrefix + base64.StdEncoding.EncodeToString(value)
	case Payload:
		wire := make(map[string]interface{}, len(value))
		for k, v := range value {
			wire[k] = encodeValue(v)
		}
		return wire
	case map[string]interface{}:
		wire := make(map[string]interface{}, len(value))
		for k, v := range value {
			wire[k] = encodeValue(v)
		}
		return wire
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, e := range value {
			out[i] = encodeValue(e)
		}
		return out
	default:
		return v
	}
}

func decodeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case string:
		if len(value) > len(byteTagPrefix) && value[:len(byteTagPrefix)] == byteTagPrefix {
			decoded, err := base64.StdEncoding.DecodeString(value[len(byteTagPrefix):])
			if err == nil {
				return decoded
			}
		}
		return value
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, v := range value {
			out[k] = decodeValue(v)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, e := range value {
			out[i] = decodeValue(e)
		}
		return out
	default:
		return v
	}
}
