// Package diagnostic provides the error kinds raised by the mapping engine and
// a collector for non-fatal notices produced while rewriting trees.
//
// Error kinds:
//   - FormatError: malformed table text (header, row tag, column count)
//   - NamespaceError: a namespace that a tree does not declare
//   - UniquenessError: two entries sharing a key within one owner
//
// Each kind matches its sentinel (ErrFormat, ErrNamespace, ErrUniqueness)
// through errors.Is, so callers can branch on the kind without type switches.
//
// Diagnostics collects the notices operations are required to surface rather
// than fail on, such as entries a namespace switch could not re-key.
package diagnostic
