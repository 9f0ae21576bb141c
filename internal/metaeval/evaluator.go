// Package metaeval evaluates metaobject operations.
//
// Evaluator.Apply is the generic entry used by the query interpreter: it
// checks arity, argument types and applicability against the operation
// table and dispatches to the handler registered for the operation.
// Sequence enumeration is a pure function of the sequence handle, so
// GetSize, GetElement and UnpackSequence always agree.
package metaeval

import (
	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/meta"
	"mirror/internal/metaobj"
)

// Evaluator applies operations to handles of one Context.
type Evaluator struct {
	ctx *metaobj.Context
	m   decl.Model
}

// New returns an evaluator over ctx.
func New(ctx *metaobj.Context) *Evaluator {
	return &Evaluator{ctx: ctx, m: ctx.Model()}
}

// Context returns the handle context.
func (e *Evaluator) Context() *metaobj.Context { return e.ctx }

type unaryHandler func(e *Evaluator, h metaobj.Handle) (Value, error)

// unaryHandlers is indexed by meta.Op; see registerHandlers.
var unaryHandlers [meta.OpCount]unaryHandler

// Apply evaluates op on args.
func (e *Evaluator) Apply(op meta.Op, args ...Value) (Value, error) {
	info, ok := meta.Info(op)
	if !ok {
		return Value{}, errorf(diag.RefUnknownOperation, op, "unknown operation %d", op)
	}
	if len(args) != len(info.Params) {
		return Value{}, errorf(diag.RefArity, op, "%s takes %d argument(s), got %d", info.Name, len(info.Params), len(args))
	}
	for i, p := range info.Params {
		switch p {
		case meta.ParamMetaobject:
			if args[i].Kind != meta.ResultMetaobject {
				return Value{}, errorf(diag.RefArgumentType, op, "argument %d of %s must be a metaobject, got %s", i+1, info.Name, args[i].Kind)
			}
		case meta.ParamIndex:
			if !args[i].IsInteger() {
				return Value{}, errorf(diag.RefArgumentType, op, "argument %d of %s must be a non-negative integer, got %s", i+1, info.Name, args[i].Kind)
			}
		}
	}

	switch op {
	case meta.OpReflectsSame:
		same, err := e.ReflectsSame(args[0].Meta, args[1].Meta)
		return BoolValue(same), err
	case meta.OpGetElement:
		id, err := e.GetElement(args[0].Meta, args[1].Integer())
		return MetaValue(id), err
	}
	return e.Unary(op, args[0].Meta)
}

// Unary applies a single-argument operation to id.
func (e *Evaluator) Unary(op meta.Op, id metaobj.ID) (Value, error) {
	if !op.IsUnary() {
		return Value{}, errorf(diag.RefArity, op, "%s is not a unary operation", op)
	}
	h, err := e.subject(op, id)
	if err != nil {
		return Value{}, err
	}
	return unaryHandlers[op](e, h)
}

// subject fetches id and checks that op applies to it.
func (e *Evaluator) subject(op meta.Op, id metaobj.ID) (metaobj.Handle, error) {
	h, ok := e.ctx.Get(id)
	if !ok {
		return h, errorf(diag.RefForeignMetaobject, op, "%d is not a metaobject of this translation unit", id)
	}
	if !op.Applicable(h.Kind) {
		err := errorf(diag.RefInapplicableOperation, op, "operation %s is not applicable to a metaobject of kind %s", op, h.Kind)
		err.Kind = h.Kind
		return h, err
	}
	return h, nil
}
