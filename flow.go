package flowdt

// Flow is a fully specified assignment of values to the recognized
// packet fields (GLOSSARY: "Flow"). The zero Flow has every field set
// to 0, which callers should avoid relying on as "unset" — a flow
// presented to [Classifier.Lookup] is expected to carry a concrete
// value for every field a rule in the tree might test.
type Flow struct {
	value [numFields]uint32
}

// Set assigns field's value in the flow.
func (f *Flow) Set(field FieldID, value uint32) {
	f.value[field] = value
}

// Get returns field's value in the flow.
func (f Flow) Get(field FieldID) uint32 {
	return f.value[field]
}
