package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snaphist/internal/ir"
)

func fleet() ([]ir.Object, []ir.Attribute) {
	objects := []ir.Object{
		object(2, "2020-01-01", "infinity"),
		object(1, "2020-01-01", "2020-12-01"),
		object(3, "2021-01-01", "infinity"),
	}
	attrs := []ir.Attribute{
		attr(100, 1, "color", "red", "2020-01-01", "2020-06-01"),
		attr(101, 1, "color", "blue", "2020-06-01", "infinity"),
		attr(102, 2, "size", "L", "2020-01-01", "infinity"),
		attr(103, 2, "size", "XL", "2020-03-01", "infinity"),
		attr(104, 99, "weight", "10", "2020-01-01", "infinity"), // orphan
	}
	return objects, attrs
}

func TestReconstruct_ObjectOrderFollowsInput(t *testing.T) {
	objects, attrs := fleet()
	h := Reconstruct(objects, attrs, Options{})

	var ids []int64
	for _, r := range h.Records {
		if len(ids) == 0 || ids[len(ids)-1] != r.ObjectID {
			ids = append(ids, r.ObjectID)
		}
	}
	assert.Equal(t, []int64{2, 1, 3}, ids)
	assert.Equal(t, 3, h.Objects)
}

func TestReconstruct_OrphanDropped(t *testing.T) {
	objects, attrs := fleet()
	h := Reconstruct(objects, attrs, Options{})

	assert.Equal(t, 1, h.Orphans)
	for _, r := range h.Records {
		assert.NotEqual(t, int64(99), r.ObjectID)
		_, ok := r.Attributes["weight"]
		assert.False(t, ok)
	}
}

func TestReconstruct_OrphanOnlyNameIsColumn(t *testing.T) {
	objects := []ir.Object{object(1, "2020-01-01", "infinity")}
	attrs := []ir.Attribute{
		attr(1, 1, "color", "red", "2020-01-01", "infinity"),
		attr(2, 99, "size", "L", "2020-01-01", "infinity"),
	}

	h := Reconstruct(objects, attrs, Options{})
	assert.Equal(t, []string{"color", "size"}, h.Columns)
	require.Len(t, h.Records, 1)
	assert.Equal(t, ir.AttributeSet{"color": "red"}, h.Records[0].Attributes)

	table := h.Table()
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"red", ""}, table.Rows[0].Values)
}

func TestReconstruct_Records(t *testing.T) {
	objects, attrs := fleet()
	h := Reconstruct(objects, attrs, Options{})

	assert.Equal(t, []string{"color", "size", "weight"}, h.Columns)
	require.Len(t, h.Records, 2+3+1)

	obj2 := h.RecordsFor(2)
	require.Len(t, obj2, 2)
	assert.Equal(t, ir.AttributeSet{"size": "L"}, obj2[0].Attributes)
	assert.Equal(t, ir.AttributeSet{"size": "XL"}, obj2[1].Attributes)

	obj1 := h.RecordsFor(1)
	require.Len(t, obj1, 3)
	assert.Equal(t, ir.AttributeSet{"color": "red"}, obj1[0].Attributes)
	assert.Equal(t, ir.AttributeSet{"color": "blue"}, obj1[1].Attributes)
	assert.Equal(t, at("2020-12-01"), obj1[2].Created)

	obj3 := h.RecordsFor(3)
	require.Len(t, obj3, 1)
	assert.Empty(t, obj3[0].Attributes)
}

func TestReconstruct_DuplicateObjectFirstWins(t *testing.T) {
	first := object(1, "2020-01-01", "infinity")
	first.Plant = "first"
	second := object(1, "2019-01-01", "infinity")
	second.Plant = "second"

	h := Reconstruct([]ir.Object{first, second}, nil, Options{})
	require.Len(t, h.Records, 1)
	assert.Equal(t, "first", h.Records[0].Plant)
	assert.Equal(t, 1, h.DuplicateObjects)
}

func TestReconstruct_Empty(t *testing.T) {
	h := Reconstruct(nil, nil, Options{})
	assert.Empty(t, h.Records)
	assert.Empty(t, h.Columns)
	assert.Equal(t, 0, h.Objects)
}

func TestReconstruct_Idempotent(t *testing.T) {
	objects, attrs := fleet()

	h1, err := Reconstruct(objects, attrs, Options{}).Hash()
	require.NoError(t, err)
	h2, err := Reconstruct(objects, attrs, Options{}).Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestReconstruct_ParallelMatchesSequential(t *testing.T) {
	var objects []ir.Object
	var attrs []ir.Attribute
	for i := int64(1); i <= 50; i++ {
		objects = append(objects, object(i, "2020-01-01", "infinity"))
		attrs = append(attrs,
			attr(i*10, i, "color", "red", "2020-01-01", "2020-06-01"),
			attr(i*10+1, i, "color", "blue", "2020-06-01", "infinity"),
		)
	}

	seq := Reconstruct(objects, attrs, Options{})
	par := Reconstruct(objects, attrs, Options{Workers: 8})

	assert.Equal(t, seq.Records, par.Records)
	assert.Equal(t, seq.Columns, par.Columns)
}

func TestReconstruct_GlobalColumnWidening(t *testing.T) {
	objects := []ir.Object{
		object(1, "2020-01-01", "infinity"),
		object(2, "2020-01-01", "infinity"),
	}
	attrs := []ir.Attribute{
		attr(1, 1, "size", "L", "2020-01-01", "infinity"),
		attr(2, 2, "color", "red", "2020-01-01", "infinity"),
	}

	h := Reconstruct(objects, attrs, Options{})
	// Records keep only their own names
	assert.Equal(t, ir.AttributeSet{"size": "L"}, h.Records[0].Attributes)

	table := h.Table()
	assert.Equal(t, []string{"color", "size"}, table.Columns)
	assert.Equal(t,
		[]string{"id", "plant", "scope", "type", "etype", "eid", "created", "terminated", "color", "size"},
		table.Header())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"", "L"}, table.Rows[0].Values)
	assert.Equal(t, []string{"red", ""}, table.Rows[1].Values)
	assert.Equal(t, int64(2), table.Rows[1].ObjectID)
}
