// Package merge combines two mapping trees that share a namespace.
//
// The shared namespace is the join key: entries of both trees with the same
// name in it are unified. The result is keyed by the second tree's source
// namespace and carries the union of both trees' namespaces.
package merge
