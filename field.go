package flowdt

// FieldID identifies one of the recognized packet header fields. The
// set is fixed and closed: it is owned by the (external, out of scope)
// flow/match descriptor library this package is built against, not by
// the classifier itself.
type FieldID uint8

const (
	FieldInPort FieldID = iota
	FieldEthType
	FieldEthSrc
	FieldEthDst
	FieldVLANVID
	FieldIPv4Src
	FieldIPv4Dst
	FieldIPProto
	FieldTCPSrcPort
	FieldTCPDstPort
	numFields
)

// fieldDescriptor carries a field's id and a human name for
// diagnostics; it does not record the field's width. All fields are
// consumed by the classifier as 32-bit quantities in network byte
// order; wider fields (e.g. a 48-bit MAC address) are truncated by the
// caller-supplied accessor's contract, not by this package.
type fieldDescriptor struct {
	id   FieldID
	name string
}

var fieldRegistry = [numFields]fieldDescriptor{
	FieldInPort:     {FieldInPort, "in_port"},
	FieldEthType:    {FieldEthType, "eth_type"},
	FieldEthSrc:     {FieldEthSrc, "eth_src"},
	FieldEthDst:     {FieldEthDst, "eth_dst"},
	FieldVLANVID:    {FieldVLANVID, "vlan_vid"},
	FieldIPv4Src:    {FieldIPv4Src, "nw_src"},
	FieldIPv4Dst:    {FieldIPv4Dst, "nw_dst"},
	FieldIPProto:    {FieldIPProto, "nw_proto"},
	FieldTCPSrcPort: {FieldTCPSrcPort, "tp_src"},
	FieldTCPDstPort: {FieldTCPDstPort, "tp_dst"},
}

// String returns the field's diagnostic name, or "field(?)" for an
// out-of-range id.
func (f FieldID) String() string {
	if int(f) < 0 || f >= numFields {
		return "field(?)"
	}
	return fieldRegistry[f].name
}

// splitCandidates is the fixed, ordered list the builder walks when
// choosing a split field. MAC fields and VLAN are recognized fields
// (usable in Match/Flow and final verification) but are never
// produced as split candidates: they rarely narrow a rule set enough
// to be worth the duplication a split on them would cause.
var splitCandidates = [...]FieldID{
	FieldIPv4Src,
	FieldIPv4Dst,
	FieldTCPSrcPort,
	FieldTCPDstPort,
	FieldIPProto,
	FieldInPort,
	FieldEthType,
}
