package prov

import "fmt"

// Convertible is implemented by domain records that know their stable PROV
// identifier and how to render themselves as a PROV element.
type Convertible interface {
	ProvIdentifier() QualifiedName
	ToProv() *Element
}

// Context supports the construction of provenance sub-models. It wraps a
// document and offers element and relation insertion with the identifier and
// typing rules the translator relies on.
type Context struct {
	Document *Document
}

// NewContext returns a context around a fresh document.
func NewContext() *Context {
	return &Context{Document: NewDocument()}
}

// AddElement ensures a node of the record's PROV type exists with the
// record's identifier and attributes. With dedupe set, a pre-existing element
// with that identifier is returned unchanged.
func (c *Context) AddElement(record Convertible, dedupe bool) *Element {
	element := record.ToProv()

	if dedupe {
		if existing := c.Document.FindElement(element.Identifier); existing != nil {
			return existing
		}
	}

	c.Document.AddElement(element)
	return element
}

// AddRelation emits a typed edge between two records. Edge identifiers are
// deterministic, relation:<source>:<target>, except for specialization and
// membership relations which are anonymous. A Revision relation additionally
// asserts the prov:Revision type.
func (c *Context) AddRelation(source, target Convertible, kind RelationKind, attributes []Attribute) *Relation {
	sourceID := source.ProvIdentifier()
	targetID := target.ProvIdentifier()

	relation := &Relation{
		Kind:       kind,
		Source:     sourceID,
		Target:     targetID,
		Attributes: attributes,
	}

	if kind.HasIdentifier() {
		relation.Identifier = QualifiedName{
			Namespace: RelationNamespace,
			LocalPart: fmt.Sprintf("relation:%s:%s", sourceID, targetID),
		}
	}

	if kind == Revision {
		relation.Attributes = append(relation.Attributes, Attribute{Key: AttrType, Value: TypeRevision})
	}

	c.Document.AddRelation(relation)
	return relation
}
