package octavia_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/octavia-db/octavia-go/errors"
	"github.com/octavia-db/octavia-go/octavia"
)

// TestCodes_WireValues tests the codes sent on the wire.
func TestCodes_WireValues(t *testing.T) {
	assert.Equal(t, "TAR_DATABASE", string(octavia.TargetDatabase))
	assert.Equal(t, "TAR_COLLECTION", string(octavia.TargetCollection))

	assert.Equal(t, "MET_INFO", string(octavia.MethodInfo))
	assert.Equal(t, "MET_DELETE", string(octavia.MethodDelete))
	assert.Equal(t, "MET_COLLECTION_EXISTS", string(octavia.MethodCollectionExists))
	assert.Equal(t, "MET_INSERT", string(octavia.MethodInsert))
	assert.Equal(t, "MET_INSERT_MANY", string(octavia.MethodInsertMany))
	assert.Equal(t, "MET_FIND", string(octavia.MethodFind))
	assert.Equal(t, "MET_FIND_MANY", string(octavia.MethodFindMany))
	assert.Equal(t, "MET_UPDATE", string(octavia.MethodUpdate))
	assert.Equal(t, "MET_UPDATE_MANY", string(octavia.MethodUpdateMany))
	assert.Equal(t, "MET_REMOVE", string(octavia.MethodRemove))
	assert.Equal(t, "MET_REMOVE_MANY", string(octavia.MethodRemoveMany))
}

// TestCodes_Valid tests closed-set membership.
func TestCodes_Valid(t *testing.T) {
	assert.True(t, octavia.TargetDatabase.Valid())
	assert.True(t, octavia.TargetCollection.Valid())
	assert.False(t, octavia.Target("TAR_INDEX").Valid())

	for _, m := range octavia.Methods() {
		assert.True(t, m.Valid(), m)
	}
	assert.Len(t, octavia.Methods(), 11)
	assert.False(t, octavia.Method("MET_DROP").Valid())
}

// TestMethod_IsWrite tests the read/write split.
func TestMethod_IsWrite(t *testing.T) {
	reads := []octavia.Method{octavia.MethodInfo, octavia.MethodFind, octavia.MethodFindMany, octavia.MethodCollectionExists}
	for _, m := range reads {
		assert.False(t, m.IsWrite(), m)
	}

	writes := []octavia.Method{
		octavia.MethodDelete, octavia.MethodInsert, octavia.MethodInsertMany,
		octavia.MethodUpdate, octavia.MethodUpdateMany, octavia.MethodRemove, octavia.MethodRemoveMany,
	}
	for _, m := range writes {
		assert.True(t, m.IsWrite(), m)
	}
}

// TestParseMethod tests the accepted spellings.
func TestParseMethod(t *testing.T) {
	tests := []struct {
		input string
		want  octavia.Method
	}{
		{"info", octavia.MethodInfo},
		{"insertMany", octavia.MethodInsertMany},
		{"insert-many", octavia.MethodInsertMany},
		{"insert_many", octavia.MethodInsertMany},
		{"INSERT_MANY", octavia.MethodInsertMany},
		{"MET_INSERT_MANY", octavia.MethodInsertMany},
		{"collectionExists", octavia.MethodCollectionExists},
		{" findMany ", octavia.MethodFindMany},
		{"removeMany", octavia.MethodRemoveMany},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := octavia.ParseMethod(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseMethod_Invalid tests rejected names.
func TestParseMethod_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "drop", "MET_DROP"} {
		_, err := octavia.ParseMethod(input)
		require.Error(t, err, input)
		assert.True(t, domainerrors.IsValidationError(err), input)
	}
}
