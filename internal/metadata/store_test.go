package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsearch/internal/domain"
)

func rec(url string, id, total int) domain.MetadataRecord {
	return domain.MetadataRecord{URL: url, ChunkID: id, TotalChunks: total, TextLength: 4, Text: "text"}
}

func TestStore_AppendGet(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	s.Append(rec("a", 0, 2))
	s.Append(rec("a", 1, 2))
	s.Append(rec("b", 0, 1))
	require.Equal(t, 3, s.Len())

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, rec("a", 1, 2), got)

	got, err = s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "b", got.URL)
}

func TestStore_GetOutOfRange(t *testing.T) {
	s := FromRecords([]domain.MetadataRecord{rec("a", 0, 1)})
	for _, id := range []int{-1, 1, 99} {
		_, err := s.Get(id)
		assert.ErrorIs(t, err, domain.ErrCorruptIndex, "row %d", id)
	}
}

func TestStore_RecordsIsCopy(t *testing.T) {
	s := FromRecords([]domain.MetadataRecord{rec("a", 0, 1)})
	out := s.Records()
	out[0].URL = "changed"
	got, _ := s.Get(0)
	assert.Equal(t, "a", got.URL)
}

func TestCheckAligned(t *testing.T) {
	assert.NoError(t, CheckAligned(0, 0))
	assert.NoError(t, CheckAligned(5, 5))
	assert.ErrorIs(t, CheckAligned(5, 4), domain.ErrCorruptIndex)
	assert.ErrorIs(t, CheckAligned(4, 5), domain.ErrCorruptIndex)
}
