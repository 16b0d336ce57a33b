package tiny

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tinymerge/internal/tree"
)

// EscapedNamesProperty marks a v2 table whose names use backslash escapes.
const EscapedNamesProperty = "escaped-names"

// MinorVersionProperty carries a non-zero v2 minor version from the header
// to the tree so that a v2 writer can reproduce it. It is never written as
// a property row.
const MinorVersionProperty = "tiny-minor-version"

// ReadV2 parses a Tiny v2 table from r into v.
func ReadV2(r io.Reader, v tree.Visitor) error {
	p := &v2Parser{lr: newLineReader(r), v: v}

	return p.run()
}

type v2Parser struct {
	lr *lineReader
	v  tree.Visitor

	nsCount   int
	escaped   bool
	inClasses bool

	// Kinds of the currently open element at each depth; 0 when none.
	member tree.Kind
	child  tree.Kind
}

func (p *v2Parser) run() error {
	line, err := p.lr.header()
	if errors.Is(err, io.EOF) {
		return p.lr.errorf("", "missing header")
	}

	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	if err := p.header(line); err != nil {
		return err
	}

	for {
		line, err := p.lr.next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("read line %d: %w", p.lr.line+1, err)
		}

		if line == "" {
			continue
		}

		if err := p.row(line); err != nil {
			return err
		}
	}

	return p.visitErr(p.v.End())
}

func (p *v2Parser) header(line string) error {
	cols := strings.Split(line, "\t")
	if len(cols) < 4 || cols[0] != "tiny" || cols[1] != "2" {
		return p.lr.errorf(line, "malformed v2 header")
	}

	minor, err := strconv.Atoi(cols[2])
	if err != nil || minor < 0 {
		return p.lr.errorf(line, "bad minor version %q", cols[2])
	}

	namespaces := cols[3:]
	for _, ns := range namespaces {
		if ns == "" {
			return p.lr.errorf(line, "empty namespace name")
		}
	}

	p.nsCount = len(namespaces)

	if err := p.visitErr(p.v.Header(namespaces[0], namespaces[1:])); err != nil {
		return err
	}

	if minor == 0 {
		return nil
	}

	return p.visitErr(p.v.Property(MinorVersionProperty, cols[2]))
}

func (p *v2Parser) row(line string) error {
	depth := 0
	for depth < len(line) && line[depth] == '\t' {
		depth++
	}

	cols := strings.Split(line[depth:], "\t")

	if !p.inClasses && depth == 1 {
		return p.property(line, cols)
	}

	switch {
	case depth == 0 && cols[0] == "c":
		p.inClasses = true

		return p.class(line, cols)
	case depth == 1 && (cols[0] == "f" || cols[0] == "m"):
		return p.memberRow(line, cols)
	case depth == 1 && cols[0] == "c":
		if p.member != 0 {
			return p.lr.errorf(line, "class comment after members")
		}

		return p.comment(line, cols, tree.KindClass)
	case depth == 2 && (cols[0] == "p" || cols[0] == "v"):
		return p.methodChild(line, cols)
	case depth == 2 && cols[0] == "c":
		if p.member == 0 || p.child != 0 {
			return p.lr.errorf(line, "member comment without an open member")
		}

		return p.comment(line, cols, p.member)
	case depth == 3 && cols[0] == "c":
		if p.child == 0 {
			return p.lr.errorf(line, "comment without an open parameter or variable")
		}

		return p.comment(line, cols, p.child)
	case depth > 3:
		return p.lr.errorf(line, "unexpected indentation %d", depth)
	default:
		return p.lr.errorf(line, "unknown row tag %q at depth %d", cols[0], depth)
	}
}

func (p *v2Parser) property(line string, cols []string) error {
	if len(cols) > 2 || cols[0] == "" {
		return p.lr.errorf(line, "malformed property")
	}

	value := ""
	if len(cols) == 2 {
		value = cols[1]
	}

	switch cols[0] {
	case EscapedNamesProperty:
		p.escaped = true
	case MinorVersionProperty:
		return p.lr.errorf(line, "reserved property %q", cols[0])
	}

	return p.visitErr(p.v.Property(cols[0], value))
}

func (p *v2Parser) class(line string, cols []string) error {
	names, err := p.names(line, cols[1:], true)
	if err != nil {
		return err
	}

	p.member, p.child = 0, 0

	if err := p.visitErr(p.v.Class(names[0])); err != nil {
		return err
	}

	return p.dstNames(tree.KindClass, names)
}

func (p *v2Parser) memberRow(line string, cols []string) error {
	if !p.inClasses {
		return p.lr.errorf(line, "member outside a class")
	}

	if len(cols) < 2 || cols[1] == "" {
		return p.lr.errorf(line, "missing descriptor")
	}

	desc := cols[1]

	names, err := p.names(line, cols[2:], true)
	if err != nil {
		return err
	}

	p.child = 0

	if cols[0] == "f" {
		p.member = tree.KindField
		err = p.v.Field(names[0], desc)
	} else {
		p.member = tree.KindMethod
		err = p.v.Method(names[0], desc)
	}

	if err := p.visitErr(err); err != nil {
		return err
	}

	return p.dstNames(p.member, names)
}

func (p *v2Parser) methodChild(line string, cols []string) error {
	if p.member != tree.KindMethod {
		return p.lr.errorf(line, "%q row outside a method", cols[0])
	}

	fixed := 1
	if cols[0] == "v" {
		fixed = 3
	}

	if len(cols) < 1+fixed {
		return p.lr.errorf(line, "wrong column count")
	}

	ints := make([]int, fixed)

	for i := range fixed {
		n, err := strconv.Atoi(cols[1+i])
		if err != nil {
			return p.lr.errorf(line, "bad integer %q", cols[1+i])
		}

		ints[i] = n
	}

	names, err := p.names(line, cols[1+fixed:], false)
	if err != nil {
		return err
	}

	if cols[0] == "p" {
		p.child = tree.KindParam
		err = p.v.Param(ints[0], names[0])
	} else {
		p.child = tree.KindLocalVar
		err = p.v.LocalVar(ints[0], ints[1], ints[2], names[0])
	}

	if err := p.visitErr(err); err != nil {
		return err
	}

	return p.dstNames(p.child, names)
}

func (p *v2Parser) comment(line string, cols []string, kind tree.Kind) error {
	if len(cols) != 2 {
		return p.lr.errorf(line, "wrong column count")
	}

	text, err := unescape(cols[1])
	if err != nil {
		return p.lr.errorf(line, "comment: %v", err)
	}

	return p.visitErr(p.v.Comment(kind, text))
}

// names validates the name columns of a row and unescapes them when the
// table declares escaped names.
func (p *v2Parser) names(line string, cols []string, srcRequired bool) ([]string, error) {
	if len(cols) != p.nsCount {
		return nil, p.lr.errorf(line, "wrong column count: %d names for %d namespaces", len(cols), p.nsCount)
	}

	if srcRequired && cols[0] == "" {
		return nil, p.lr.errorf(line, "empty source name")
	}

	if !p.escaped {
		for _, c := range cols {
			if needsEscape(c) {
				return nil, p.lr.errorf(line, "name %q needs escaping but the table lacks the %s property",
					c, EscapedNamesProperty)
			}
		}

		return cols, nil
	}

	out := make([]string, len(cols))

	for i, c := range cols {
		name, err := unescape(c)
		if err != nil {
			return nil, p.lr.errorf(line, "name %q: %v", c, err)
		}

		out[i] = name
	}

	return out, nil
}

func (p *v2Parser) dstNames(kind tree.Kind, names []string) error {
	for i, name := range names[1:] {
		if name == "" {
			continue
		}

		if err := p.visitErr(p.v.DstName(kind, i, name)); err != nil {
			return err
		}
	}

	return nil
}

func (p *v2Parser) visitErr(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("line %d: %w", p.lr.line, err)
}
