package services

import (
	"fmt"
	"strings"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

// Naming applies the bundle file name template "<prefix>-<name>.<extension>".
// The same name is used for local files and remote URL path segments.
type Naming struct {
	prefix    string
	extension string
}

// NewNaming creates a naming template from manifest settings
func NewNaming(n entities.Naming) Naming {
	return Naming{
		prefix:    n.Prefix,
		extension: strings.TrimPrefix(n.Extension, "."),
	}
}

// FileName returns the bundle file name for a component
func (n Naming) FileName(name entities.ComponentName) string {
	return fmt.Sprintf("%s-%s.%s", n.prefix, name, n.extension)
}

// RemoteURL joins the remote base and the bundle file name
func (n Naming) RemoteURL(base string, name entities.ComponentName) string {
	return strings.TrimRight(base, "/") + "/" + n.FileName(name)
}

// ComponentFromFileName reverses FileName. ok is false if fileName does not
// follow the template.
func (n Naming) ComponentFromFileName(fileName string) (entities.ComponentName, bool) {
	head := n.prefix + "-"
	tail := "." + n.extension
	if !strings.HasPrefix(fileName, head) || !strings.HasSuffix(fileName, tail) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(fileName, head), tail)
	if name == "" {
		return "", false
	}
	return entities.ComponentName(name), true
}
