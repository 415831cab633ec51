package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/cozy/substance-go/codec"
	"github.com/cozy/substance-go/document"
	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/test/builder"
	"github.com/cozy/substance-go/transform"
)

var formats = []string{FormatJSON, FormatCBOR}

func TestNew(t *testing.T) {
	for _, format := range formats {
		c, err := New(format)
		require.NoError(t, err)
		assert.Equal(t, format, c.Format())
	}
	_, err := New("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSnapshot(t *testing.T) {
	source := builder.Article()
	snapshot := source.ToJSON()
	for _, format := range formats {
		c, err := New(format)
		require.NoError(t, err)
		data, err := EncodeSnapshot(c, snapshot)
		require.NoError(t, err)
		decoded, err := DecodeSnapshot(c, data)
		require.NoError(t, err, format)
		assert.Equal(t, snapshot.Schema, decoded.Schema, format)

		doc := document.New(builder.Schema)
		require.NoError(t, doc.LoadSeed(decoded), format)
		assert.Equal(t, snapshot, doc.ToJSON(), format)
	}

	_, err := DecodeSnapshot(JSON{}, []byte("{"))
	assert.Error(t, err)
	_, err = DecodeSnapshot(NewCBOR(), []byte{0xff})
	assert.Error(t, err)
}

func TestChanges(t *testing.T) {
	source := builder.Article()
	edits := []document.TransformFunc{
		func(tx *transform.Transaction) (transform.State, error) {
			return nil, transform.InsertText(tx, model.Path{"p1", "content"}, 5, ",")
		},
		func(tx *transform.Transaction) (transform.State, error) {
			_, err := transform.Annotate(tx, builder.Em("", model.Path{"h1", "content"}, 0, 5))
			return nil, err
		},
		func(tx *transform.Transaction) (transform.State, error) {
			return nil, transform.DeleteText(tx, model.Path{"p2", "content"}, 0, 7)
		},
		func(tx *transform.Transaction) (transform.State, error) {
			return nil, transform.DeleteNodeDeep(tx, "p1")
		},
	}
	for _, fn := range edits {
		_, err := source.Transaction(transform.State{"selection": nil}, map[string]interface{}{"user": "alice"}, fn)
		require.NoError(t, err)
	}
	done := source.Done()
	require.Len(t, done, len(edits))

	for _, format := range formats {
		c, err := New(format)
		require.NoError(t, err)
		data, err := EncodeChanges(c, done)
		require.NoError(t, err)
		changes, err := DecodeChanges(c, data)
		require.NoError(t, err, format)
		require.Len(t, changes, len(done))
		for i, change := range changes {
			assert.Equal(t, done[i].ID(), change.ID())
			assert.Equal(t, done[i].Len(), change.Len())
			assert.Equal(t, "alice", change.Info()["user"])
			assert.Equal(t, done[i].Timestamp().UnixMilli(), change.Timestamp().UnixMilli())
		}

		target := builder.Article()
		for _, change := range changes {
			require.NoError(t, target.ApplyChange(change), format)
		}
		assert.Equal(t, source.ToJSON(), target.ToJSON(), format)

		// and back
		for range changes {
			_, err := target.Undo()
			require.NoError(t, err)
		}
		assert.Equal(t, builder.Article().ToJSON(), target.ToJSON(), format)
	}
}

func TestDecodeChangesErrors(t *testing.T) {
	_, err := DecodeChanges(JSON{}, []byte(`[{"ops": [{"type": "move"}]}]`))
	assert.ErrorIs(t, err, transform.ErrUnknownOperation)
	_, err = DecodeChanges(JSON{}, []byte(`{}`))
	assert.Error(t, err)
}
