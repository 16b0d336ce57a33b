package tiny

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tree"
)

// CounterPropertyPrefix prefixes the properties that carry v1
// INTERMEDIARY-COUNTER values, e.g. "next-intermediary-class".
const CounterPropertyPrefix = "next-intermediary-"

const counterComment = "INTERMEDIARY-COUNTER"

type v1Member struct {
	kind  tree.Kind
	desc  string
	names []string
	line  int
}

type v1Class struct {
	name    string
	names   []string
	line    int
	members []v1Member
}

// ReadV1 parses a Tiny v1 table from r into v. Rows are grouped by owning
// class, so members may appear anywhere in the file, including before the
// CLASS row of their owner or without one.
func ReadV1(r io.Reader, v tree.Visitor) error {
	lr := newLineReader(r)

	line, err := lr.header()
	if errors.Is(err, io.EOF) {
		return lr.errorf("", "missing header")
	}

	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	cols := strings.Split(line, "\t")
	if len(cols) < 2 || cols[0] != "v1" {
		return lr.errorf(line, "malformed v1 header")
	}

	namespaces := cols[1:]
	for _, ns := range namespaces {
		if ns == "" {
			return lr.errorf(line, "empty namespace name")
		}
	}

	var (
		props   []tree.Property
		classes []*v1Class
		byName  = make(map[string]*v1Class)
	)

	owner := func(name string) *v1Class {
		c, ok := byName[name]
		if !ok {
			c = &v1Class{name: name}
			byName[name] = c
			classes = append(classes, c)
		}

		return c
	}

	for {
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("read line %d: %w", lr.line+1, err)
		}

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if prop, ok := parseCounter(line); ok {
				props = append(props, prop)
			}

			continue
		}

		cols := strings.Split(line, "\t")

		switch cols[0] {
		case "CLASS":
			if len(cols) != 1+len(namespaces) {
				return lr.errorf(line, "wrong column count: %d names for %d namespaces", len(cols)-1, len(namespaces))
			}

			if cols[1] == "" {
				return lr.errorf(line, "empty source name")
			}

			c := owner(cols[1])
			if c.names != nil {
				return fmt.Errorf("line %d: %w", lr.line,
					&diagnostic.UniquenessError{Kind: tree.KindClass.String(), Key: cols[1]})
			}

			c.names = cols[1:]
			c.line = lr.line
		case "FIELD", "METHOD":
			if len(cols) != 3+len(namespaces) {
				return lr.errorf(line, "wrong column count: %d names for %d namespaces", len(cols)-3, len(namespaces))
			}

			if cols[1] == "" || cols[2] == "" || cols[3] == "" {
				return lr.errorf(line, "empty owner, descriptor or source name")
			}

			kind := tree.KindField
			if cols[0] == "METHOD" {
				kind = tree.KindMethod
			}

			c := owner(cols[1])
			c.members = append(c.members, v1Member{kind: kind, desc: cols[2], names: cols[3:], line: lr.line})
		default:
			return lr.errorf(line, "unknown row tag %q", cols[0])
		}
	}

	return emitV1(v, namespaces, props, classes)
}

func emitV1(v tree.Visitor, namespaces []string, props []tree.Property, classes []*v1Class) error {
	if err := v.Header(namespaces[0], namespaces[1:]); err != nil {
		return err
	}

	for _, p := range props {
		if err := v.Property(p.Key, p.Value); err != nil {
			return err
		}
	}

	for _, c := range classes {
		if err := v.Class(c.name); err != nil {
			return fmt.Errorf("line %d: %w", c.line, err)
		}

		if err := emitV1Names(v, tree.KindClass, c.names); err != nil {
			return fmt.Errorf("line %d: %w", c.line, err)
		}

		for _, m := range c.members {
			if m.kind == tree.KindField {
				err := v.Field(m.names[0], m.desc)
				if err != nil {
					return fmt.Errorf("line %d: %w", m.line, err)
				}
			} else {
				err := v.Method(m.names[0], m.desc)
				if err != nil {
					return fmt.Errorf("line %d: %w", m.line, err)
				}
			}

			if err := emitV1Names(v, m.kind, m.names); err != nil {
				return fmt.Errorf("line %d: %w", m.line, err)
			}
		}
	}

	return v.End()
}

func emitV1Names(v tree.Visitor, kind tree.Kind, names []string) error {
	if len(names) == 0 {
		return nil
	}

	for i, name := range names[1:] {
		if name == "" {
			continue
		}

		if err := v.DstName(kind, i, name); err != nil {
			return err
		}
	}

	return nil
}

// parseCounter recognizes "# INTERMEDIARY-COUNTER <kind> <n>".
func parseCounter(line string) (tree.Property, bool) {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	if len(fields) != 3 || fields[0] != counterComment {
		return tree.Property{}, false
	}

	if _, err := strconv.Atoi(fields[2]); err != nil {
		return tree.Property{}, false
	}

	return tree.Property{Key: CounterPropertyPrefix + fields[1], Value: fields[2]}, true
}
