// Package walk turns a modeled type graph plus two capability
// providers into serializer blueprints. A blueprint carries one
// instruction per included member, in declared field order followed
// by declared relation order; the emit package renders the same
// instruction stream into Go source text and into loadable closures.
package walk

import (
	"fmt"

	"xfer-generator/internal/model"
	"xfer-generator/internal/support"
)

// Triple identifies one serializer: the source representation, the
// destination representation, and the modeled type it covers.
type Triple struct {
	SourceRepr string
	DestRepr   string
	TypeName   string
}

func (t Triple) String() string {
	return fmt.Sprintf("%s->%s:%s", t.SourceRepr, t.DestRepr, t.TypeName)
}

// Reverse swaps the representation ends, naming the inverse
// serializer of the same type.
func (t Triple) Reverse() Triple {
	return Triple{SourceRepr: t.DestRepr, DestRepr: t.SourceRepr, TypeName: t.TypeName}
}

// InstrKind discriminates the instruction variants.
type InstrKind int

const (
	// InstrField copies one scalar field.
	InstrField InstrKind = iota
	// InstrSingle copies one single-valued relation through a nested
	// serializer.
	InstrSingle
	// InstrCollection copies one collection-valued relation
	// element-wise through a nested serializer.
	InstrCollection
)

//go:generate go tool stringer -type=InstrKind -trimprefix=Instr -output=instrkind_string.go

// Instruction is one member-copy step of a serializer. The fragment
// fields hold composed source text; relation statements contain the
// support.NestedValue placeholder where the nested routine call
// belongs. The runtime loader re-executes the same step through the
// providers' accessors, so the instruction also keeps the member
// addressing it was built from.
type Instruction struct {
	Kind InstrKind
	// Member is the modeled field or relation name.
	Member string
	// As is the serialized name when a rename is in effect, else "".
	As string
	// Handler names the custom transformation for a field, else "".
	Handler string

	// Field form.
	Stmt string

	// Single-relation form.
	PresentExpr string
	ArgExpr     string
	AssignStmt  string

	// Collection form. CollPresentExpr is "" when the source
	// representation needs no guard around the element loop.
	CollPresentExpr string
	CollExpr        string
	ElemVar         string
	ElemArg         string
	ClearStmt       string
	AppendStmt      string

	// Nested is the blueprint for the relation target. It is shared
	// through the memo, so on cyclic models it may still be filling
	// in while this instruction already points at it.
	Nested *Blueprint
}

// Blueprint is the walk product for one triple: everything the
// emitter needs to render the serializer as text and to assemble its
// loadable form.
type Blueprint struct {
	Triple       Triple
	Type         *model.ModeledType
	Source       support.Provider
	Dest         support.Provider
	Instructions []Instruction

	complete bool
}

// Complete reports whether the walk over this blueprint's members has
// finished. It is false only while a cycle is being walked.
func (b *Blueprint) Complete() bool { return b.complete }
