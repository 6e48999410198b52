package sema

import (
	"strings"

	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/types"
)

func (c *checker) checkExhaustiveness(fn *ast.ItemFnData) {
	c.exhaustStmts(fn.Body)
}

func (c *checker) exhaustStmts(stmts []ast.StmtID) {
	for _, id := range stmts {
		c.exhaustStmt(id)
	}
}

func (c *checker) exhaustStmt(stmtID ast.StmtID) {
	stmts := c.builder.Stmts
	switch stmts.Get(stmtID).Kind {
	case ast.StmtIf:
		data, _ := stmts.If(stmtID)
		c.exhaustStmts(data.Then)
		if data.HasElse {
			c.exhaustStmts(data.Else)
		}
	case ast.StmtWhile:
		data, _ := stmts.While(stmtID)
		c.exhaustStmts(data.Body)
	case ast.StmtFor:
		data, _ := stmts.For(stmtID)
		c.exhaustStmts(data.Body)
	case ast.StmtMatch:
		c.exhaustMatch(stmtID)
	}
}

func (c *checker) exhaustMatch(stmtID ast.StmtID) {
	stmts := c.builder.Stmts
	stmt := stmts.Get(stmtID)
	data, _ := stmts.Match(stmtID)

	enumInfo := c.scrutineeEnum(data.Scrutinee)

	// covered[i] is set once variant i is matched by an arm that cannot
	// fail for it, meaning every subpattern is itself a catch-all.
	var covered []bool
	if enumInfo != nil {
		covered = make([]bool, len(enumInfo.Variants))
	}
	sawCatchAll := false

	for _, arm := range data.Arms {
		if sawCatchAll {
			c.report(diag.Warnf(diag.MatchUnreachableArm, arm.Span,
				"unreachable arm, a previous pattern already matches everything"))
			continue
		}
		pat := c.builder.Pats.Get(arm.Pattern)
		vsym, isVariantPat := c.syms.PatSyms[arm.Pattern]
		if !isVariantPat && (pat.Kind == ast.PatWildcard || pat.Kind == ast.PatBinding) {
			sawCatchAll = true
			c.exhaustStmts(arm.Body)
			continue
		}
		if enumInfo != nil && isVariantPat {
			sym := c.syms.Symbol(vsym)
			if sym != nil && sym.Enum == enumInfo.Sym && sym.Variant < len(covered) {
				if covered[sym.Variant] {
					c.report(diag.Warnf(diag.MatchUnreachableArm, arm.Span,
						"unreachable arm, variant '%s' is already handled",
						c.name(enumInfo.Variants[sym.Variant].Name)))
				} else if c.patternIrrefutable(arm.Pattern) {
					covered[sym.Variant] = true
				}
			}
		}
		c.exhaustStmts(arm.Body)
	}

	if sawCatchAll {
		return
	}
	if enumInfo == nil {
		c.report(diag.Errorf(diag.MatchNoCatchAll, stmt.Span,
			"match on a non-enum value needs a catch-all arm"))
		return
	}
	var missing []string
	for i, v := range enumInfo.Variants {
		if !covered[i] {
			missing = append(missing, c.name(v.Name))
		}
	}
	if len(missing) > 0 {
		c.report(diag.Errorf(diag.MatchMissingVariants, stmt.Span,
			"match does not cover variant(s) %s of enum '%s'",
			strings.Join(missing, ", "), c.name(enumInfo.Name)))
	}
}

func (c *checker) scrutineeEnum(scrutinee ast.ExprID) *EnumInfo {
	t := c.res.ExprTypes[scrutinee]
	for {
		desc, ok := c.in.Lookup(t)
		if !ok {
			return nil
		}
		if desc.Kind == types.KindRef {
			t = desc.Elem
			continue
		}
		if desc.Kind == types.KindEnum {
			return c.res.EnumOfDecl[desc.Decl]
		}
		return nil
	}
}

// patternIrrefutable reports whether the pattern matches every value of
// its variant. A nested constructor pattern can still fail.
func (c *checker) patternIrrefutable(patID ast.PatID) bool {
	pats := c.builder.Pats
	pat := pats.Get(patID)
	switch pat.Kind {
	case ast.PatWildcard:
		return true
	case ast.PatBinding:
		// Only promoted bare variant names reach here; the unit form
		// carries no subpatterns, so it always matches its variant.
		return true
	case ast.PatEnum:
		data, _ := pats.Enum(patID)
		for _, sub := range data.Sub {
			if !c.subIrrefutable(sub) {
				return false
			}
		}
		for _, field := range data.Fields {
			if !c.subIrrefutable(field.Pat) {
				return false
			}
		}
		return true
	}
	return false
}

// subIrrefutable is patternIrrefutable for positions below the top
// constructor, where any variant pattern can fail.
func (c *checker) subIrrefutable(patID ast.PatID) bool {
	pat := c.builder.Pats.Get(patID)
	if pat.Kind == ast.PatEnum {
		return false
	}
	if pat.Kind == ast.PatBinding {
		if _, promoted := c.syms.PatSyms[patID]; promoted {
			return false
		}
	}
	return pat.Kind == ast.PatWildcard || pat.Kind == ast.PatBinding
}
