// Package codec encodes the snapshots and the change logs of a document, in
// JSON or in CBOR.
package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"

	"github.com/cozy/substance-go/document"
	"github.com/cozy/substance-go/transform"
)

// The names of the formats.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// ErrUnknownFormat is returned by New for a format that is neither json nor
// cbor.
var ErrUnknownFormat = errors.New("unknown format")

// Codec marshals and unmarshals values in a given format.
type Codec interface {
	Format() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, dst interface{}) error
}

// New returns the codec for a format name.
func New(format string) (Codec, error) {
	switch format {
	case FormatJSON:
		return JSON{}, nil
	case FormatCBOR:
		return NewCBOR(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// JSON is the JSON codec.
type JSON struct{}

func (JSON) Format() string { return FormatJSON }

func (JSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, dst interface{}) error {
	return json.Unmarshal(data, dst)
}

// CBOR is the CBOR codec. The maps are decoded as map[string]interface{},
// like with JSON.
type CBOR struct {
	em cbor.EncMode
	dm cbor.DecMode
}

// NewCBOR returns a CBOR codec.
func NewCBOR() CBOR {
	em, err := cbor.EncOptions{
		Sort: cbor.SortCanonical,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return CBOR{em: em, dm: dm}
}

func (CBOR) Format() string { return FormatCBOR }

func (c CBOR) Marshal(v interface{}) ([]byte, error) {
	return c.em.Marshal(v)
}

func (c CBOR) Unmarshal(data []byte, dst interface{}) error {
	return c.dm.Unmarshal(data, dst)
}

// EncodeSnapshot encodes a snapshot of a document.
func EncodeSnapshot(c Codec, snap document.Snapshot) ([]byte, error) {
	data, err := c.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot as %s: %w", c.Format(), err)
	}
	return data, nil
}

// DecodeSnapshot decodes a snapshot encoded by EncodeSnapshot.
func DecodeSnapshot(c Codec, data []byte) (document.Snapshot, error) {
	var snap document.Snapshot
	if err := c.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decoding %s snapshot: %w", c.Format(), err)
	}
	return snap, nil
}

// EncodeChanges encodes a list of changes, like the history of a document.
func EncodeChanges(c Codec, changes []*transform.DocumentChange) ([]byte, error) {
	list := make([]map[string]interface{}, len(changes))
	for i, change := range changes {
		list[i] = change.ToJSON()
	}
	data, err := c.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encoding changes as %s: %w", c.Format(), err)
	}
	return data, nil
}

// DecodeChanges decodes a list of changes encoded by EncodeChanges.
func DecodeChanges(c Codec, data []byte) ([]*transform.DocumentChange, error) {
	var list []map[string]interface{}
	if err := c.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding %s changes: %w", c.Format(), err)
	}
	changes := make([]*transform.DocumentChange, 0, len(list))
	for i, obj := range list {
		change, err := transform.ChangeFromJSON(obj)
		if err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
		changes = append(changes, change)
	}
	return changes, nil
}
