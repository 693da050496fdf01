package prov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entityStub is a minimal Convertible for context tests.
type entityStub struct {
	id string
}

func (s *entityStub) ProvIdentifier() QualifiedName {
	return QualifiedNameOf(s.id)
}

func (s *entityStub) ToProv() *Element {
	return NewEntity(s.ProvIdentifier(), []Attribute{{Key: "id", Value: s.id}})
}

func TestQualifiedName(t *testing.T) {
	t.Run("default namespace renders bare", func(t *testing.T) {
		assert.Equal(t, "PipelineVersion?id=0", QualifiedNameOf("PipelineVersion?id=0").String())
	})

	t.Run("prefixed namespace renders with prefix", func(t *testing.T) {
		name := QualifiedName{Namespace: RelationNamespace, LocalPart: "relation:a:b"}
		assert.Equal(t, "ex:relation:a:b", name.String())
	})
}

func TestContextAddElement(t *testing.T) {
	t.Run("adds one element per call", func(t *testing.T) {
		ctx := NewContext()
		ctx.AddElement(&entityStub{id: "a"}, false)
		ctx.AddElement(&entityStub{id: "a"}, false)

		assert.Len(t, ctx.Document.Elements, 2)
	})

	t.Run("dedupe returns the existing element", func(t *testing.T) {
		ctx := NewContext()
		first := ctx.AddElement(&entityStub{id: "a"}, false)
		second := ctx.AddElement(&entityStub{id: "a"}, true)

		assert.Same(t, first, second)
		assert.Len(t, ctx.Document.Elements, 1)
	})
}

func TestContextAddRelation(t *testing.T) {
	t.Run("edge identifiers are deterministic", func(t *testing.T) {
		ctx := NewContext()
		relation := ctx.AddRelation(&entityStub{id: "a"}, &entityStub{id: "b"}, Generation, nil)

		assert.Equal(t, "ex:relation:a:b", relation.Identifier.String())
		assert.Equal(t, "wasGeneratedBy", relation.Kind.Label())
	})

	t.Run("membership and specialization are anonymous", func(t *testing.T) {
		ctx := NewContext()
		membership := ctx.AddRelation(&entityStub{id: "a"}, &entityStub{id: "b"}, Membership, nil)
		specialization := ctx.AddRelation(&entityStub{id: "a"}, &entityStub{id: "b"}, Specialization, nil)

		assert.Empty(t, membership.Identifier.LocalPart)
		assert.Empty(t, specialization.Identifier.LocalPart)
	})

	t.Run("revision asserts the revision type", func(t *testing.T) {
		ctx := NewContext()
		relation := ctx.AddRelation(&entityStub{id: "a"}, &entityStub{id: "b"}, Revision, nil)

		assert.Equal(t, "wasDerivedFrom", relation.Kind.Label())
		assert.Contains(t, relation.Attributes, Attribute{Key: AttrType, Value: TypeRevision})
	})

	t.Run("extra attributes are preserved", func(t *testing.T) {
		ctx := NewContext()
		relation := ctx.AddRelation(&entityStub{id: "a"}, &entityStub{id: "b"}, Usage,
			[]Attribute{{Key: AttrRole, Value: "UsedOperatorRevision"}})

		require.Len(t, relation.Attributes, 1)
		assert.Equal(t, AttrRole, relation.Attributes[0].Key)
	})
}

func TestLiteral(t *testing.T) {
	t.Run("renders PROV-N representation", func(t *testing.T) {
		assert.Equal(t, `"x"`, Literal{Value: "x"}.ProvN())
		assert.Equal(t, `"1" %% xsd:int`, Literal{Value: "1", Datatype: "xsd:int"}.ProvN())
	})
}
