// Package yaml handles the params.yaml file the reproducible-pipeline tool
// re-reads when triggered: pipeline-mode training mutates it in place.
package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParamsFile edits a DVC-style params.yaml while preserving unrelated keys,
// ordering, and comments by operating on the yaml.v3 node tree instead of
// round-tripping through maps.
type ParamsFile struct {
	path string
}

// NewParamsFile creates an editor for the file at path.
func NewParamsFile(path string) *ParamsFile {
	return &ParamsFile{path: path}
}

// Path returns the params file location.
func (p *ParamsFile) Path() string {
	return p.path
}

// SetTrainParam sets train.<key> to value, creating the train mapping or the
// key if absent. The value is written as a plain scalar: the training tool
// interprets it on its own terms.
func (p *ParamsFile) SetTrainParam(key, value string) error {
	//nolint:gosec // G304: params path is operator-provided
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read params file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse params file: %w", err)
	}

	root := documentRoot(&doc)
	if root == nil {
		return fmt.Errorf("params file %s has no mapping document", p.path)
	}

	train := childMapping(root, "train")
	if train == nil {
		train = appendMapping(root, "train")
	}
	setScalar(train, key, value)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode params file: %w", err)
	}

	info, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("failed to stat params file: %w", err)
	}
	if err := os.WriteFile(p.path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write params file: %w", err)
	}
	return nil
}

// TrainParam reads train.<key> as a string, with ok reporting presence.
func (p *ParamsFile) TrainParam(key string) (value string, ok bool, err error) {
	//nolint:gosec // G304: params path is operator-provided
	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", false, fmt.Errorf("failed to read params file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", false, fmt.Errorf("failed to parse params file: %w", err)
	}

	root := documentRoot(&doc)
	if root == nil {
		return "", false, nil
	}
	train := childMapping(root, "train")
	if train == nil {
		return "", false, nil
	}
	node := childValue(train, key)
	if node == nil {
		return "", false, nil
	}
	return node.Value, true, nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	return root
}

// childValue returns the value node for key within a mapping node.
func childValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func childMapping(mapping *yaml.Node, key string) *yaml.Node {
	node := childValue(mapping, key)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

func appendMapping(mapping *yaml.Node, key string) *yaml.Node {
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	valNode := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	mapping.Content = append(mapping.Content, keyNode, valNode)
	return valNode
}

func setScalar(mapping *yaml.Node, key, value string) {
	if node := childValue(mapping, key); node != nil {
		node.SetString(value)
		// Numeric strings stay plain scalars so the downstream tool reads
		// them as numbers, matching hand-written params files.
		node.Tag = ""
		node.Style = 0
		return
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	valNode := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	mapping.Content = append(mapping.Content, keyNode, valNode)
}
