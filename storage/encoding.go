package storage

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

// Property keys and labels used by the property-graph encoding. The
// provinspector:identifier property acts as the primary key for merging;
// provinspector:node is the primary label carried by every node.
const (
	ProvInspectorID        = "provinspector:identifier"
	ProvInspectorLabel     = "provinspector:label"
	ProvInspectorNode      = "provinspector:node"
	ProvInspectorEdge      = "provinspector:edge"
	ProvInspectorBundledIn = "provinspector:bundledIn"
)

// NodeLabels maps the PROV element classes to their node labels.
var NodeLabels = []string{"Entity", "Activity", "Agent", "Bundle"}

// Node is one property-graph node: a label set and a property map.
type Node struct {
	Labels     []string
	Properties map[string]any
}

// Edge is one typed property-graph relationship between two nodes,
// referenced by their primary key.
type Edge struct {
	Label      string
	SourceID   string
	TargetID   string
	Properties map[string]any
}

// Subgraph is the property-graph encoding of one PROV document fragment.
// Nodes are keyed by their provinspector:identifier.
type Subgraph struct {
	Nodes map[string]*Node
	Edges []*Edge
}

// propertyEntry is one key/value occurrence before duplicate collapsing.
type propertyEntry struct {
	key   string
	value any
}

// encodeValue coerces a property value to a store primitive: qualified names
// and identifiers become strings, PROV literals their PROV-N representation,
// temporal values the store's native temporal types (durations at seconds
// resolution). All other scalars pass through unchanged.
func encodeValue(value any) any {
	switch v := value.(type) {
	case prov.QualifiedName:
		return v.String()
	case prov.Literal:
		return v.ProvN()
	case time.Time:
		return v
	case time.Duration:
		return dbtype.Duration{Seconds: int64(v.Seconds())}
	default:
		return value
	}
}

// collapseProperties turns an ordered list of key/value occurrences into a
// property map. A key occurring more than once becomes a list-valued
// property; otherwise it stays scalar.
func collapseProperties(entries []propertyEntry) map[string]any {
	counts := make(map[string]int, len(entries))
	for _, entry := range entries {
		counts[entry.key]++
	}

	properties := make(map[string]any, len(entries))
	for _, entry := range entries {
		value := encodeValue(entry.value)
		if counts[entry.key] == 1 {
			properties[entry.key] = value
			continue
		}
		list, _ := properties[entry.key].([]any)
		properties[entry.key] = append(list, value)
	}

	return properties
}

// graphNode pairs a traversed element with its containing bundle, if any.
type graphNode struct {
	element  *prov.Element
	bundle   *prov.Bundle
	inBundle *prov.Bundle
}

// collectNodes explores the document breadth first, level by level,
// expanding bundles as they are encountered. Bundles themselves become
// nodes alongside the elements they contain.
func collectNodes(doc *prov.Document) []graphNode {
	var nodes []graphNode

	type level struct {
		elements []*prov.Element
		bundles  []*prov.Bundle
		owner    *prov.Bundle
	}

	queue := []level{{elements: doc.Elements, bundles: doc.Bundles}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, element := range current.elements {
			nodes = append(nodes, graphNode{element: element, inBundle: current.owner})
		}
		for _, bundle := range current.bundles {
			nodes = append(nodes, graphNode{bundle: bundle, inBundle: current.owner})
			queue = append(queue, level{elements: bundle.Elements, bundles: bundle.Bundles, owner: bundle})
		}
	}

	return nodes
}

// collectRelations flattens the document and its bundles into a single list
// of relations.
func collectRelations(doc *prov.Document) []*prov.Relation {
	relations := append([]*prov.Relation(nil), doc.Relations...)
	for _, bundle := range doc.Bundles {
		relations = append(relations, collectRelations(&bundle.Document)...)
	}
	return relations
}

// nodeEntries renders the identifier and property occurrences of a
// traversed node: the primary label, the PROV class label, the stable
// identifier, and the element's own attributes. Bundle nodes carry no
// attributes.
func nodeEntries(node graphNode) (string, []propertyEntry) {
	entries := []propertyEntry{{key: ProvInspectorLabel, value: ProvInspectorNode}}

	if node.bundle != nil {
		id := node.bundle.Identifier.String()
		entries = append(entries,
			propertyEntry{key: ProvInspectorLabel, value: prov.KindBundle.Label()},
			propertyEntry{key: ProvInspectorID, value: id},
		)
		return id, entries
	}

	id := node.element.Identifier.String()
	entries = append(entries,
		propertyEntry{key: ProvInspectorLabel, value: node.element.Kind.Label()},
		propertyEntry{key: ProvInspectorID, value: id},
	)
	for _, attr := range node.element.Attributes {
		entries = append(entries, propertyEntry{key: attr.Key, value: attr.Value})
	}

	return id, entries
}

// placeholderEntries renders the property occurrences of a node that only
// appears as a relation endpoint.
func placeholderEntries(identifier prov.QualifiedName) []propertyEntry {
	return []propertyEntry{
		{key: ProvInspectorLabel, value: ProvInspectorNode},
		{key: ProvInspectorID, value: identifier.String()},
	}
}

// EncodeDocument encodes a PROV document as a property-graph subgraph.
//
// Every PROV element becomes one node labeled with the primary label and its
// PROV class, carrying its attributes plus the stable identifier as
// properties. Relations whose target is a literal are folded into the source
// node as a property; all others become typed relationships. Every node
// inside a bundle additionally gains a bundledIn edge to the bundle node.
func EncodeDocument(doc *prov.Document) *Subgraph {
	traversed := collectNodes(doc)
	relations := collectRelations(doc)

	entriesByID := make(map[string][]propertyEntry)
	var order []string

	record := func(id string, entries []propertyEntry) {
		if _, ok := entriesByID[id]; !ok {
			order = append(order, id)
		}
		entriesByID[id] = entries
	}

	for _, node := range traversed {
		id, entries := nodeEntries(node)
		record(id, entries)
	}

	for _, relation := range relations {
		sourceID := relation.Source.String()
		if _, ok := entriesByID[sourceID]; !ok {
			record(sourceID, placeholderEntries(relation.Source))
		}

		target, isNode := relation.TargetName()
		if !isNode {
			// Literal endpoint: fold into the source node as a property
			entriesByID[sourceID] = append(entriesByID[sourceID],
				propertyEntry{key: relation.Kind.Label(), value: relation.Target})
			continue
		}

		targetID := target.String()
		if _, ok := entriesByID[targetID]; !ok {
			record(targetID, placeholderEntries(target))
		}
	}

	subgraph := &Subgraph{Nodes: make(map[string]*Node, len(order))}
	for _, id := range order {
		properties := collapseProperties(entriesByID[id])

		var labels []string
		switch label := properties[ProvInspectorLabel].(type) {
		case string:
			labels = []string{label}
		case []any:
			for _, l := range label {
				labels = append(labels, l.(string))
			}
		}
		delete(properties, ProvInspectorLabel)

		subgraph.Nodes[id] = &Node{Labels: labels, Properties: properties}
	}

	for _, relation := range relations {
		target, isNode := relation.TargetName()
		if !isNode {
			continue
		}

		entries := []propertyEntry{
			{key: ProvInspectorLabel, value: ProvInspectorEdge},
			{key: ProvInspectorLabel, value: relation.Kind.Label()},
		}
		for _, attr := range relation.Attributes {
			entries = append(entries, propertyEntry{key: attr.Key, value: attr.Value})
		}

		subgraph.Edges = append(subgraph.Edges, &Edge{
			Label:      relation.Kind.Label(),
			SourceID:   relation.Source.String(),
			TargetID:   target.String(),
			Properties: collapseProperties(entries),
		})
	}

	for _, node := range traversed {
		if node.bundle != nil || node.inBundle == nil {
			continue
		}
		subgraph.Edges = append(subgraph.Edges, &Edge{
			Label:      ProvInspectorBundledIn,
			SourceID:   node.element.Identifier.String(),
			TargetID:   node.inBundle.Identifier.String(),
			Properties: map[string]any{},
		})
	}

	return subgraph
}
