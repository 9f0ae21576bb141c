package meta

// SequenceKind selects the relation an ObjectSequence enumerates.
type SequenceKind uint8

const (
	SeqNone SequenceKind = iota
	SeqMemberConstants
	SeqMemberVariables
	SeqMemberTypes
	SeqBaseClasses
	// SeqAll matches every member matched by the three member kinds.
	SeqAll
)

func (k SequenceKind) String() string {
	switch k {
	case SeqMemberConstants:
		return "MemberConstants"
	case SeqMemberVariables:
		return "MemberVariables"
	case SeqMemberTypes:
		return "MemberTypes"
	case SeqBaseClasses:
		return "BaseClasses"
	case SeqAll:
		return "All"
	}
	return "None"
}

// OverBases reports whether the sequence walks base-specifiers rather than
// declaration-context members.
func (k SequenceKind) OverBases() bool { return k == SeqBaseClasses }
