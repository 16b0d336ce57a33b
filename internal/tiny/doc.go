// Package tiny reads and writes mapping tables in the Tiny v1 and Tiny v2
// text formats.
//
// Readers push rows into a tree.Visitor as they are parsed; writers are
// visitors themselves, so serializing a tree is tree.Accept(NewV2Writer(w)).
//
// Tiny v2 is tab-indented:
//
//	tiny	2	0	official	hashed	named
//		escaped-names
//	c	a	h/C_1	net/Foo
//		c	Class comment.
//		f	I	b	f_2	count
//		m	(La;)V	c	m_3	run
//			p	1		h_1	value
//			v	2	5	-1		v_1	tmp
//
// Tiny v1 is flat, one row per class or member, with the owner repeated on
// member rows:
//
//	v1	official	hashed	named
//	# INTERMEDIARY-COUNTER class 12
//	CLASS	a	h/C_1	net/Foo
//	FIELD	a	I	b	f_2	count
//	METHOD	a	(La;)V	c	m_3	run
package tiny
