package export

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/oimdp/internal/openiti"
)

// JSONExporter writes the document tree as indented JSON.
type JSONExporter struct{}

func (e *JSONExporter) Export(w io.Writer, doc *openiti.Document, title string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// YAMLExporter writes the same tree as JSONExporter in block-style YAML.
// Key order follows the JSON encoding.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(w io.Writer, doc *openiti.Document, title string) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return err
	}
	blockStyle(&root)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle clears the flow and quoting styles the JSON input left on
// every node so the encoder picks plain block output.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
