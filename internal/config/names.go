package config

// Namespaces of the merged mapping tables.
const (
	// NsOfficial is the obfuscated namespace of the shipped artifact.
	NsOfficial = "official"
	// NsHashed is the stable machine-generated intermediate namespace.
	NsHashed = "hashed"
	// NsNamed is the curated human-readable namespace.
	NsNamed = "named"
	// NsIntermediary is the intermediate namespace of intermediary tables.
	NsIntermediary = "intermediary"
)

// File names used by the merge pipeline.
const (
	// MappingsFile is the final merged table.
	MappingsFile = "mappings.tiny"
	// UnmergedMappingsFile is a v1 table before field names are proposed.
	UnmergedMappingsFile = "unmerged-mappings.tiny"
	// InvertedHashedFile is the intermediate table switched to hashed.
	InvertedHashedFile = "inverted-hashed.tiny"
	// UnorderedMergedFile is the merged table before namespace reordering.
	UnorderedMergedFile = "unordered-merged.tiny"
)

// OutputNamespaces is the namespace order of the final table.
var OutputNamespaces = []string{NsOfficial, NsHashed, NsNamed}
