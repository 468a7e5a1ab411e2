package engine

type sourceKind int

const (
	sourceBytes sourceKind = iota
	sourceUnreadable
	sourceMissing
)

// Source is one named input slot of the engine: the bytes of a PEM file,
// an I/O failure reported by the layer that tried to obtain them, or the
// explicit absence of the slot (only meaningful for the CRL chain).
type Source struct {
	kind sourceKind
	path string
	data []byte
	err  error
}

func NewSource(path string, data []byte) Source {
	return Source{kind: sourceBytes, path: path, data: data}
}

func UnreadableSource(path string, err error) Source {
	return Source{kind: sourceUnreadable, path: path, err: err}
}

func MissingSource() Source {
	return Source{kind: sourceMissing}
}

// Provided reports whether the caller supplied this slot at all.
func (s Source) Provided() bool {
	return s.kind != sourceMissing
}

// Readable reports whether the slot carries usable bytes.
func (s Source) Readable() bool {
	return s.kind == sourceBytes
}

func (s Source) Path() string {
	return s.path
}

func (s Source) Data() []byte {
	return s.data
}

func (s Source) Err() error {
	return s.err
}
