package diag

import (
	"fmt"
)

// Code identifies a diagnostic kind. The numeric space is partitioned per
// pipeline stage so a code alone tells which stage produced it.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical.
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003

	// Syntactic.
	SynUnexpectedToken  Code = 2001
	SynExpectIdentifier Code = 2002
	SynExpectType       Code = 2003
	SynExpectSemicolon  Code = 2004
	SynUnclosedBrace    Code = 2005
	SynBadMatchArm      Code = 2006
	SynBadAssignTarget  Code = 2007

	// Name resolution.
	ResDuplicateSymbol  Code = 3001
	ResUnresolvedSymbol Code = 3002
	ResPrivateSymbol    Code = 3003
	ResNotAType         Code = 3004
	ResUnknownVariant   Code = 3005
	ResAmbiguousSymbol  Code = 3006
	ResOutsideLoop      Code = 3007

	// Type checking.
	TypeMismatch          Code = 4001
	TypeInvalidBinaryOps  Code = 4002
	TypeInvalidUnaryOp    Code = 4003
	TypeNotCallable       Code = 4004
	TypeArityMismatch     Code = 4005
	TypeUnknownField      Code = 4006
	TypeMissingField      Code = 4007
	TypeTypeArityMismatch Code = 4008
	TypeCannotInfer       Code = 4009
	TypeNotIndexable      Code = 4010
	TypeConditionNotBool  Code = 4011
	TypeAssignImmutable   Code = 4012
	TypeOccursCheck       Code = 4013
	TypeNotIterable       Code = 4014

	// Ownership and borrows.
	OwnUseAfterMove        Code = 5001
	OwnBorrowConflict      Code = 5002
	OwnAssignWhileBorrowed Code = 5003
	OwnMoveWhileBorrowed   Code = 5004
	OwnMutBorrowImmutable  Code = 5005

	// Match exhaustiveness.
	MatchMissingVariants Code = 6001
	MatchUnreachableArm  Code = 6002
	MatchNoCatchAll      Code = 6003

	// Internal invariant violations. Never user-caused; the driver maps
	// these to the internal-error exit path instead of the diagnostics
	// report.
	InternalCodegen   Code = 9001
	InternalMonoDepth Code = 9002
)

func (c Code) String() string {
	return fmt.Sprintf("PD%04d", uint16(c))
}

// Stage names the pipeline stage owning the code's numeric block.
func (c Code) Stage() string {
	switch {
	case c >= 9000:
		return "internal"
	case c >= 6000:
		return "exhaustiveness"
	case c >= 5000:
		return "ownership"
	case c >= 4000:
		return "typecheck"
	case c >= 3000:
		return "resolve"
	case c >= 2000:
		return "parse"
	case c >= 1000:
		return "lex"
	}
	return "unknown"
}
