package kvstore

// SeekPos is the byte range inside a data file where one value's serialized
// bytes live.
type SeekPos struct {
	Offset uint64
	Length uint64
}

// manifest is the in-memory/on-disk mapping from key to SeekPos. It is kept
// as a plain map rather than a wrapper struct: gob encodes map[K]SeekPos
// directly, and there is no extra bookkeeping (like the original's running
// write-position counter) that the Go side needs to carry across a rebuild,
// since Insert/Extend compute offsets from the temp writer's own position.
type manifest[K comparable] map[K]SeekPos
