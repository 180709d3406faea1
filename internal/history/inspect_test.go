package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snaphist/internal/ir"
)

func findingKinds(fs []Finding) []FindingKind {
	out := make([]FindingKind, len(fs))
	for i, f := range fs {
		out[i] = f.Kind
	}
	return out
}

func TestInspect_CleanInput(t *testing.T) {
	objects := []ir.Object{object(1, "2020-01-01", "infinity")}
	attrs := []ir.Attribute{
		attr(1, 1, "color", "red", "2020-01-01", "2020-06-01"),
		attr(2, 1, "color", "blue", "2020-06-01", "infinity"),
	}
	// A hand-over at the same instant is not an overlap
	assert.Empty(t, Inspect(objects, attrs))
}

func TestInspect_Overlap(t *testing.T) {
	objects := []ir.Object{object(1, "2020-01-01", "infinity")}
	attrs := []ir.Attribute{
		attr(1, 1, "color", "red", "2020-01-01", "infinity"),
		attr(2, 1, "color", "blue", "2020-06-01", "infinity"),
		attr(3, 1, "size", "L", "2020-06-01", "infinity"),
	}

	fs := Inspect(objects, attrs)
	require.Len(t, fs, 1)
	assert.Equal(t, FindingOverlap, fs[0].Kind)
	assert.Equal(t, int64(2), fs[0].AttributeID)
	assert.Equal(t, "color", fs[0].Name)
	assert.Contains(t, fs[0].Message, `"blue" overlaps attribute 1 ("red")`)
}

func TestInspect_OverlapWithLongRunningValue(t *testing.T) {
	objects := []ir.Object{object(1, "2020-01-01", "infinity")}
	attrs := []ir.Attribute{
		attr(1, 1, "color", "red", "2020-01-01", "2020-12-01"),
		attr(2, 1, "color", "blue", "2020-02-01", "2020-03-01"),
		attr(3, 1, "color", "green", "2020-04-01", "2020-05-01"),
	}

	fs := Inspect(objects, attrs)
	require.Len(t, fs, 2)
	assert.Equal(t, int64(2), fs[0].AttributeID)
	assert.Equal(t, int64(3), fs[1].AttributeID)
}

func TestInspect_AllKinds(t *testing.T) {
	objects := []ir.Object{
		object(1, "2020-01-01", "2020-12-01"),
		object(1, "2020-01-01", "infinity"),
		object(2, "2021-01-01", "2020-01-01"),
	}
	attrs := []ir.Attribute{
		attr(10, 7, "color", "red", "2020-01-01", "infinity"),
		attr(11, 1, "color", "red", "2020-05-01", "2020-04-01"),
		attr(12, 1, "size", "L", "2021-01-01", "infinity"),
	}

	assert.Equal(t, []FindingKind{
		FindingDuplicateObject,
		FindingInvertedObject,
		FindingOrphanAttribute,
		FindingInvertedAttribute,
		FindingOutsideLifetime,
	}, findingKinds(Inspect(objects, attrs)))
}

func TestFindingString(t *testing.T) {
	f := Finding{Kind: FindingOrphanAttribute, ObjectID: 7, AttributeID: 10, Message: "dropped"}
	assert.Equal(t, "ORPHAN_ATTRIBUTE: object 7 attribute 10: dropped", f.String())

	f = Finding{Kind: FindingDuplicateObject, ObjectID: 1, Message: "repeated"}
	assert.Equal(t, "DUPLICATE_OBJECT: object 1: repeated", f.String())
}
