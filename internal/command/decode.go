package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/invopop/yaml"
)

// ErrUnknownCommand is returned by Decode for an unregistered type tag.
var ErrUnknownCommand = errors.New("unknown command")

// Envelope is the wire form of a command.
type Envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type decodeFunc func(payload json.RawMessage) (Command, error)

func decoder[T Command]() (Kind, decodeFunc) {
	var zero T
	return zero.Kind(), func(payload json.RawMessage) (Command, error) {
		var c T
		if len(payload) > 0 && !bytes.Equal(payload, []byte("null")) {
			if err := json.Unmarshal(payload, &c); err != nil {
				return nil, err
			}
		}
		return c, nil
	}
}

var registry = func() map[Kind]decodeFunc {
	m := map[Kind]decodeFunc{}
	for _, reg := range []func() (Kind, decodeFunc){
		decoder[SetInfoField], decoder[SetExternalDocs],
		decoder[AddServer], decoder[UpdateServer], decoder[RemoveServer],
		decoder[AddServerVariable], decoder[UpdateServerVariable], decoder[RenameServerVariable], decoder[RemoveServerVariable],
		decoder[AddTag], decoder[UpdateTag], decoder[RemoveTag],
		decoder[AddPath], decoder[RenamePath], decoder[RemovePath], decoder[UpdatePathItem],
		decoder[AddOperation], decoder[RemoveOperation], decoder[ChangeOperationMethod], decoder[UpdateOperation],
		decoder[SetOperationTags], decoder[SetOperationDeprecated], decoder[SetOperationSecurity],
		decoder[AddParameter], decoder[UpdateParameter], decoder[RemoveParameter],
		decoder[AddRequestBody], decoder[RemoveRequestBody], decoder[UpdateRequestBody],
		decoder[AddRequestBodyMediaType], decoder[RemoveRequestBodyMediaType], decoder[SetRequestBodySchema],
		decoder[AddResponse], decoder[RenameResponse], decoder[UpdateResponse], decoder[RemoveResponse],
		decoder[AddResponseMediaType], decoder[RemoveResponseMediaType], decoder[SetResponseSchema],
		decoder[AddCallback], decoder[RenameCallback], decoder[RemoveCallback],
		decoder[AddSecurityScheme], decoder[UpdateSecurityScheme], decoder[RenameSecurityScheme], decoder[RemoveSecurityScheme],
		decoder[AddOAuthFlow], decoder[UpdateOAuthFlow], decoder[RemoveOAuthFlow],
		decoder[AddScope], decoder[RenameScope], decoder[RemoveScope], decoder[ToggleGlobalSecurity],
		decoder[AddSchema], decoder[UpdateSchema], decoder[RenameSchema], decoder[RemoveSchema],
		decoder[Save], decoder[Undo], decoder[ResetSpec], decoder[ReplaceSpec],
	} {
		kind, fn := reg()
		m[kind] = fn
	}
	return m
}()

// Kinds lists every registered type tag in lexical order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DecodeEnvelope turns an envelope into a typed command.
func DecodeEnvelope(env Envelope) (Command, error) {
	fn, ok := registry[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
	}
	cmd, err := fn(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return cmd, nil
}

// Decode reads one {"type", "payload"} object.
func Decode(data []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	return DecodeEnvelope(env)
}

// DecodeBatch reads a JSON or YAML list of envelopes.
func DecodeBatch(data []byte) ([]Command, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode commands: %w", err)
	}
	var envs []Envelope
	if err := json.Unmarshal(jsonData, &envs); err != nil {
		return nil, fmt.Errorf("decode commands: %w", err)
	}
	cmds := make([]Command, 0, len(envs))
	for i, env := range envs {
		cmd, err := DecodeEnvelope(env)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Encode wraps cmd in its envelope.
func Encode(cmd Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: cmd.Kind(), Payload: payload})
}
