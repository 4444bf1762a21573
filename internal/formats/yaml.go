package formats

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// The YAML codecs operate on yaml.Node trees instead of map unmarshalling:
// mapping nodes keep their source order, which the pivot contract requires.

func decodeYAMLFlat(data []byte) ([]Translation, error) {
	root, err := yamlRootMapping(data)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}

	var translations []Translation
	for i := 0; i < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("key %q: flat YAML values must be scalars", key.Value)
		}
		translations = append(translations, Translation{Term: key.Value, Value: scalarValue(value)})
	}
	return translations, nil
}

func encodeYAMLFlat(doc Document) ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, t := range doc.Translations {
		mapping.Content = append(mapping.Content, scalarNode(t.Term), scalarNode(t.Value))
	}
	return yaml.Marshal(mapping)
}

func decodeYAMLNested(data []byte) ([]Translation, error) {
	root, err := yamlRootMapping(data)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	collector := newFlatCollector()
	if err := walkYAMLMapping(root, collector, "", 0); err != nil {
		return nil, err
	}
	return collector.translations, nil
}

func walkYAMLMapping(mapping *yaml.Node, collector *flatCollector, prefix string, level int) error {
	if level >= maxNestingDepth {
		return errors.New("too many nested levels in YAML content")
	}
	for i := 0; i < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		path := joinPath(prefix, key.Value)
		switch value.Kind {
		case yaml.ScalarNode:
			if err := collector.leaf(path, scalarValue(value)); err != nil {
				return err
			}
		case yaml.MappingNode:
			if err := collector.enter(path); err != nil {
				return err
			}
			if err := walkYAMLMapping(value, collector, path, level+1); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: nested YAML values must be mappings or scalars", path)
		}
	}
	return nil
}

func encodeYAMLNested(doc Document) ([]byte, error) {
	return yaml.Marshal(yamlTree(buildTree(doc.Translations)))
}

func yamlTree(n *treeNode) *yaml.Node {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range n.keys {
		child := n.children[key]
		mapping.Content = append(mapping.Content, scalarNode(key))
		if child.isLeaf {
			mapping.Content = append(mapping.Content, scalarNode(child.value))
		} else {
			mapping.Content = append(mapping.Content, yamlTree(child))
		}
	}
	return mapping
}

// yamlRootMapping parses the input and returns its root mapping node, or nil
// for an empty document.
func yamlRootMapping(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(stripBOM(data), &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("YAML contents must be a mapping")
	}
	return root, nil
}

// scalarValue treats explicit nulls as empty values so `key:` lines decode
// the same way `key: ""` does.
func scalarValue(n *yaml.Node) string {
	if n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

// scalarNode forces the string tag so numeric-looking values survive a
// round trip as strings.
func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
