package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Синтаксис query-файлов
	SynInfo                Code = 2000
	SynUnexpectedToken     Code = 2001
	SynUnknownChar         Code = 2002
	SynUnterminatedString  Code = 2003
	SynBadNumber           Code = 2004
	SynExpectSemicolon     Code = 2005
	SynExpectExpression    Code = 2006
	SynExpectIdentifier    Code = 2007
	SynUnclosedParen       Code = 2008
	SynBadReflexprArg      Code = 2009
	SynTokenTooLong        Code = 2010
	SynUnterminatedComment Code = 2011
	SynBadEscape           Code = 2012

	// Рефлексия
	RefInfo                  Code = 3000
	RefInapplicableOperation Code = 3001
	RefUnknownOperation      Code = 3002
	RefArity                 Code = 3003
	RefArgumentType          Code = 3004
	RefIndexOutOfRange       Code = 3005
	RefUnresolvedEntity      Code = 3006
	RefNotUnreflectable      Code = 3007
	RefAssertFailed          Code = 3008
	RefUnboundName           Code = 3009
	RefRedefinedName         Code = 3010
	RefNoBaseSpecifier       Code = 3012
	RefForeignMetaobject     Code = 3013

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Описание единицы трансляции
	UntInfo           Code = 4500
	UntDecodeError    Code = 4501
	UntUnknownKey     Code = 4502
	UntBadKind        Code = 4503
	UntUnresolvedName Code = 4504
	UntBadType        Code = 4505
	UntDuplicateDecl  Code = 4506
	UntBadBase        Code = 4507
	UntBadAccess      Code = 4508
	UntBadValue       Code = 4509
	UntBadContext     Code = 4510

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	SynInfo:                  "Syntax information",
	SynUnexpectedToken:       "Unexpected token",
	SynUnknownChar:           "Unknown character",
	SynUnterminatedString:    "Unterminated string literal",
	SynBadNumber:             "Malformed integer literal",
	SynExpectSemicolon:       "Expected ';'",
	SynExpectExpression:      "Expected expression",
	SynExpectIdentifier:      "Expected identifier",
	SynUnclosedParen:         "Unclosed parenthesis",
	SynBadReflexprArg:        "Malformed reflexpr operand",
	SynTokenTooLong:          "Token exceeds the maximum length",
	SynUnterminatedComment:   "Unterminated block comment",
	SynBadEscape:             "Invalid escape sequence",
	RefInfo:                  "Reflection information",
	RefInapplicableOperation: "Operation is not applicable to this metaobject",
	RefUnknownOperation:      "Unknown metaobject operation",
	RefArity:                 "Wrong number of operation arguments",
	RefArgumentType:          "Operation argument has the wrong type",
	RefIndexOutOfRange:       "Metaobject sequence index out of range",
	RefUnresolvedEntity:      "Reflected entity cannot be resolved",
	RefNotUnreflectable:      "Metaobject cannot be unreflected",
	RefAssertFailed:          "Assertion failed",
	RefUnboundName:           "Use of an unbound name",
	RefRedefinedName:         "Name is already bound",
	RefNoBaseSpecifier:       "Class has no such base-specifier",
	RefForeignMetaobject:     "Metaobject id does not belong to this translation unit",
	IOLoadFileError:          "I/O load file error",
	UntInfo:                  "Translation unit information",
	UntDecodeError:           "Malformed translation unit file",
	UntUnknownKey:            "Unknown key in translation unit file",
	UntBadKind:               "Unknown declaration kind",
	UntUnresolvedName:        "Name does not resolve to a declaration",
	UntBadType:               "Malformed type expression",
	UntDuplicateDecl:         "Duplicate declaration",
	UntBadBase:               "Malformed base-specifier",
	UntBadAccess:             "Invalid access specifier",
	UntBadValue:              "Invalid enumerator value",
	UntBadContext:            "Declaration is not allowed in this context",
	ObsInfo:                  "Observability information",
	ObsTimings:               "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("REF%04d", ic)
	case ic >= 4000 && ic < 4500:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 4500 && ic < 5000:
		return fmt.Sprintf("UNT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
