package nsop

import (
	"fmt"

	"tinymerge/internal/tree"
)

func errOutOfOrder(kind tree.Kind) error {
	return fmt.Errorf("%s name visited while no %s is open", kind, kind)
}

func errNamespaceIndex(kind tree.Kind, ns int) error {
	return fmt.Errorf("%s name for namespace %d out of range", kind, ns)
}
