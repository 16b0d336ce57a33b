package tree

// Accept pushes the tree's content through v in the order described in the
// package documentation, finishing with End.
func (t *Tree) Accept(v Visitor) error {
	if err := v.Header(t.srcNs, t.DstNamespaces()); err != nil {
		return err
	}

	for _, p := range t.props {
		if err := v.Property(p.Key, p.Value); err != nil {
			return err
		}
	}

	for _, c := range t.classes {
		if err := acceptClass(c, v); err != nil {
			return err
		}
	}

	return v.End()
}

func acceptClass(c *ClassEntry, v Visitor) error {
	if err := v.Class(c.src); err != nil {
		return err
	}

	if err := acceptNames(&c.element, KindClass, v); err != nil {
		return err
	}

	for _, f := range c.fields {
		if err := v.Field(f.src, f.desc); err != nil {
			return err
		}

		if err := acceptNames(&f.element, KindField, v); err != nil {
			return err
		}
	}

	for _, m := range c.methods {
		if err := acceptMethod(m, v); err != nil {
			return err
		}
	}

	return nil
}

func acceptMethod(m *MethodEntry, v Visitor) error {
	if err := v.Method(m.src, m.desc); err != nil {
		return err
	}

	if err := acceptNames(&m.element, KindMethod, v); err != nil {
		return err
	}

	for _, p := range m.params {
		if err := v.Param(p.lvIndex, p.src); err != nil {
			return err
		}

		if err := acceptNames(&p.element, KindParam, v); err != nil {
			return err
		}
	}

	for _, lv := range m.vars {
		if err := v.LocalVar(lv.lvIndex, lv.startOffset, lv.lvtRowIndex, lv.src); err != nil {
			return err
		}

		if err := acceptNames(&lv.element, KindLocalVar, v); err != nil {
			return err
		}
	}

	return nil
}

func acceptNames(e *element, kind Kind, v Visitor) error {
	for ns, name := range e.dst {
		if name == "" {
			continue
		}

		if err := v.DstName(kind, ns, name); err != nil {
			return err
		}
	}

	if e.comment != "" {
		return v.Comment(kind, e.comment)
	}

	return nil
}
