package tree

import (
	"path/filepath"
	"strings"

	"github.com/vango-dev/yui/pkg/vdom"
)

// Parse builds a tree choosing the format from the file name: .yaml and
// .yml are YAML, .jsonc is JSON with comments, anything else is JSON.
func Parse(name string, data []byte, opts ...Option) (*vdom.Node, error) {
	opts = append([]Option{WithFile(name)}, opts...)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return BuildYAML(data, opts...)
	case ".jsonc":
		return Build(data, append(opts, WithComments())...)
	}
	return Build(data, opts...)
}
