package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snaphist/internal/ir"
	"github.com/roach88/snaphist/internal/testutil"
)

func TestImportObjects_PreservesOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	objects, _ := testInput()

	n, err := s.ImportObjects(ctx, objects)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID, "import order, not id order")
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, objects, got)
}

func TestImportObjects_FirstOccurrenceWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := testutil.Object(1, "2020-01-01 00:00:00", "infinity")
	second := testutil.Object(1, "2021-01-01 00:00:00", "infinity")
	second.Plant = "other"

	n, err := s.ImportObjects(ctx, []ir.Object{first, second})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Re-importing is a no-op.
	n, err = s.ImportObjects(ctx, []ir.Object{second})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first, got[0])
}

func TestImportAttributes_AllowsUnknownObject(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, attrs := testInput()

	n, err := s.ImportAttributes(ctx, attrs)
	require.NoError(t, err)
	assert.Equal(t, len(attrs), n)

	got, err := s.Attributes(ctx)
	require.NoError(t, err)
	assert.Equal(t, attrs, got)
}

func TestImportAttributes_KeepsSubSecondPrecision(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := testutil.Attr(1, 1, "size", "L", "2020-01-15 12:30:00.123456789", "infinity")
	_, err := s.ImportAttributes(ctx, []ir.Attribute{a})
	require.NoError(t, err)

	got, err := s.Attributes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Created.Equal(a.Created))
	assert.True(t, got[0].Terminated.Equal(a.Terminated))
}

func TestCounts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	objects, attrs := testInput()

	_, err := s.ImportObjects(ctx, objects)
	require.NoError(t, err)
	_, err = s.ImportAttributes(ctx, attrs)
	require.NoError(t, err)

	nObj, nAttr, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, nObj)
	assert.Equal(t, 4, nAttr)
}

func TestSaveRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	h := testHistory()

	run, err := s.SaveRun(ctx, "run-1", h)
	require.NoError(t, err)

	want, err := h.Hash()
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, want, run.HistoryHash)
	assert.Equal(t, []string{"color", "orphan", "size"}, run.Columns)
	assert.Equal(t, 2, run.Objects)
	assert.Equal(t, len(h.Records), run.Records)
	assert.Equal(t, 1, run.Orphans)
}

func TestSaveRun_DuplicateIDFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	h := testHistory()

	_, err := s.SaveRun(ctx, "run-1", h)
	require.NoError(t, err)

	_, err = s.SaveRun(ctx, "run-1", h)
	require.Error(t, err)

	// The failed save left nothing behind.
	var count int
	require.NoError(t, s.db.Get(&count, `SELECT COUNT(*) FROM run_records WHERE run_id = 'run-1'`))
	assert.Equal(t, len(h.Records), count)
}
