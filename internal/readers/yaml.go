package readers

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dataload-go/dataload/pkg/dataload"
)

// YAML returns a reader for YAML documents. Mappings decode into
// dataload.Object in document order; sequences into []any.
func YAML() dataload.Reader {
	return func(r io.Reader) (any, error) {
		var root yaml.Node
		if err := yaml.NewDecoder(r).Decode(&root); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
		return convertYAMLNode(&root)
	}
}

func convertYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convertYAMLNode(n.Content[0])
	case yaml.MappingNode:
		obj := make(dataload.Object, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := convertYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, dataload.Member{Key: key, Value: val})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := convertYAMLNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		return convertYAMLScalar(n)
	case yaml.AliasNode:
		return convertYAMLNode(n.Alias)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

func convertYAMLScalar(n *yaml.Node) (any, error) {
	switch n.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		return strconv.ParseBool(n.Value)
	case "!!int":
		return strconv.Atoi(n.Value)
	case "!!float":
		return strconv.ParseFloat(n.Value, 64)
	default:
		return n.Value, nil
	}
}
