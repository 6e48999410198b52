package mono

import (
	"palladium/internal/ast"
)

// walkStmts visits every statement and expression of an instance body,
// resolving generic call sites and recording the concrete types the
// body mentions.
func (b *builder) walkStmts(inst *FnInst, stmts []ast.StmtID, depth int) {
	for _, id := range stmts {
		b.walkStmt(inst, id, depth)
	}
}

func (b *builder) walkStmt(inst *FnInst, stmtID ast.StmtID, depth int) {
	stmts := b.astb.Stmts
	switch stmts.Get(stmtID).Kind {
	case ast.StmtExpr:
		data, _ := stmts.Expr(stmtID)
		b.walkExpr(inst, data.Expr, depth)
	case ast.StmtLet:
		data, _ := stmts.Let(stmtID)
		b.walkExpr(inst, data.Value, depth)
	case ast.StmtAssign:
		data, _ := stmts.Assign(stmtID)
		b.walkExpr(inst, data.Target, depth)
		b.walkExpr(inst, data.Value, depth)
	case ast.StmtReturn:
		data, _ := stmts.Return(stmtID)
		b.walkExpr(inst, data.Value, depth)
	case ast.StmtIf:
		data, _ := stmts.If(stmtID)
		b.walkExpr(inst, data.Cond, depth)
		b.walkStmts(inst, data.Then, depth)
		if data.HasElse {
			b.walkStmts(inst, data.Else, depth)
		}
	case ast.StmtWhile:
		data, _ := stmts.While(stmtID)
		b.walkExpr(inst, data.Cond, depth)
		b.walkStmts(inst, data.Body, depth)
	case ast.StmtFor:
		data, _ := stmts.For(stmtID)
		b.walkExpr(inst, data.Iter, depth)
		b.walkStmts(inst, data.Body, depth)
	case ast.StmtMatch:
		data, _ := stmts.Match(stmtID)
		b.walkExpr(inst, data.Scrutinee, depth)
		for _, arm := range data.Arms {
			b.walkStmts(inst, arm.Body, depth)
		}
	}
}

func (b *builder) walkExpr(inst *FnInst, exprID ast.ExprID, depth int) {
	if !exprID.IsValid() {
		return
	}
	b.collectType(inst.TypeOf(b.res, exprID))

	exprs := b.astb.Exprs
	switch exprs.Get(exprID).Kind {
	case ast.ExprUnary:
		data, _ := exprs.Unary(exprID)
		b.walkExpr(inst, data.Operand, depth)
	case ast.ExprBinary:
		data, _ := exprs.Binary(exprID)
		b.walkExpr(inst, data.Left, depth)
		b.walkExpr(inst, data.Right, depth)
	case ast.ExprCall:
		data, _ := exprs.Call(exprID)
		b.instantiateCall(inst, exprID, depth)
		for _, arg := range data.Args {
			b.walkExpr(inst, arg, depth)
		}
	case ast.ExprIndex:
		data, _ := exprs.Index(exprID)
		b.walkExpr(inst, data.Array, depth)
		b.walkExpr(inst, data.Index, depth)
	case ast.ExprField:
		data, _ := exprs.Field(exprID)
		b.walkExpr(inst, data.Object, depth)
	case ast.ExprStructLit:
		data, _ := exprs.StructLit(exprID)
		for _, field := range data.Fields {
			b.walkExpr(inst, field.Value, depth)
		}
	case ast.ExprEnumCtor:
		data, _ := exprs.EnumCtor(exprID)
		for _, arg := range data.Args {
			b.walkExpr(inst, arg, depth)
		}
		for _, field := range data.Fields {
			b.walkExpr(inst, field.Value, depth)
		}
	case ast.ExprArrayLit:
		data, _ := exprs.ArrayLit(exprID)
		for _, elem := range data.Elems {
			b.walkExpr(inst, elem, depth)
		}
	case ast.ExprArrayRepeat:
		data, _ := exprs.ArrayRepeat(exprID)
		b.walkExpr(inst, data.Value, depth)
		b.walkExpr(inst, data.Count, depth)
	case ast.ExprRange:
		data, _ := exprs.Range(exprID)
		b.walkExpr(inst, data.Start, depth)
		b.walkExpr(inst, data.End, depth)
	case ast.ExprBorrow:
		data, _ := exprs.Borrow(exprID)
		b.walkExpr(inst, data.Operand, depth)
	}
}
