package model

// JoinRecord is an unordered pair of structural elements known to be
// geometrically joined. Records are captured before a transform mutates
// geometry and re-established afterward; a record is only actionable while
// both referenced elements still exist.
type JoinRecord struct {
	A ID
	B ID
}

// NewJoinRecord returns the canonical record for the pair (a, b).
// The smaller identifier is always stored first so that equal pairs
// compare equal regardless of argument order.
func NewJoinRecord(a, b ID) JoinRecord {
	if b.Less(a) {
		a, b = b, a
	}
	return JoinRecord{A: a, B: b}
}
