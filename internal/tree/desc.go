package tree

import "strings"

// MapDesc rewrites the class names inside a JVM field or method descriptor
// from namespace from to namespace to. Class names the tree does not map are
// left unchanged, as are primitive and malformed segments.
//
//	MapDesc("(La;I)[Lb;", src, named) => "(Lnet/Foo;I)[Lnet/Bar;"
func (t *Tree) MapDesc(desc string, from, to int) string {
	if from == to || !strings.Contains(desc, "L") {
		return desc
	}

	var b strings.Builder

	b.Grow(len(desc))

	for i := 0; i < len(desc); i++ {
		ch := desc[i]
		b.WriteByte(ch)

		if ch != 'L' {
			continue
		}

		end := strings.IndexByte(desc[i+1:], ';')
		if end < 0 {
			// Not a class reference; copy the remainder verbatim.
			b.WriteString(desc[i+1:])

			break
		}

		name := desc[i+1 : i+1+end]
		b.WriteString(t.MapClassName(name, from, to))
		b.WriteByte(';')

		i += end + 1
	}

	return b.String()
}
