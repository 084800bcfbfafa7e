// Package component implements the composition algebra over (trace,
// constraints, labels) triples: permute_columns, shift, fold,
// compose_horizontal, compose_vertical, fold_many, compose_folded.
// Ported from original_source/crypto/stark/src/component/mod.rs, which
// implements each operation as a pure function taking owned components by
// value and rewriting RationalExpression trees via a `project_into`
// traversal; this package keeps that function-per-operation shape but
// expresses project_into as an explicit row/column/expression mapper
// rather than move semantics, per spec.md §9's functional-transformation
// framing.
package component

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
	"github.com/0xProject/starkcrypto/internal/proteus/trace"
)

// Label identifies a single public value inside a component's trace: the
// row it lives at, and the expression that extracts it (typically a bare
// Trace(col, 0), but left general to match the source's (row, expr) pairs).
type Label struct {
	Row  int
	Expr *dsl.Expr
}

// Component bundles a trace, its constraints, and a set of named labels
// into public values, per spec.md §4.11.
type Component struct {
	Field      *core.Field
	Trace      *trace.Table
	Constraints []*dsl.Expr
	Labels     map[string]Label
}

// Empty builds a zero-filled component with no constraints or labels.
func Empty(field *core.Field, numRows, numColumns int) (*Component, error) {
	t, err := trace.NewTable(field, numRows, numColumns)
	if err != nil {
		return nil, err
	}
	return &Component{Field: field, Trace: t, Labels: map[string]Label{}}, nil
}

func indexRotate(length, index, offset int) int {
	return ((index+offset)%length + length) % length
}

// projectInto copies a's trace rows into dst at positions given by rowCol,
// rewrites a's constraints with exprMap, and copies (renamed) labels.
func projectInto(a *Component, dst *Component, rowCol func(i, j int) (int, int), exprMap func(*dsl.Expr) *dsl.Expr, renameLabel func(string) string) {
	rows, cols := a.Trace.NumRows(), a.Trace.NumColumns()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dr, dc := rowCol(i, j)
			dst.Trace.Set(dr, dc, a.Trace.Get(i, j))
		}
	}
	for _, c := range a.Constraints {
		dst.Constraints = append(dst.Constraints, mapExpr(c, exprMap))
	}
	for name, label := range a.Labels {
		newName := name
		if renameLabel != nil {
			newName = renameLabel(name)
		}
		dst.Labels[newName] = Label{Row: label.Row, Expr: mapExpr(label.Expr, exprMap)}
	}
}

// mapExpr applies f to every node of expr, rebuilding the tree bottom-up;
// f is given the chance to replace a node outright (as the Rust source's
// match arms do for Trace/X) and is applied after children are mapped.
func mapExpr(expr *dsl.Expr, f func(*dsl.Expr) *dsl.Expr) *dsl.Expr {
	if expr == nil {
		return nil
	}
	mapped := *expr
	switch expr.Kind {
	case dsl.KindNeg, dsl.KindPow:
		mapped.Arg = mapExpr(expr.Arg, f)
	case dsl.KindClaimPolynomial:
		mapped.Arg = mapExpr(expr.Arg, f)
	case dsl.KindAdd, dsl.KindSub, dsl.KindMul, dsl.KindDiv:
		mapped.Left = mapExpr(expr.Left, f)
		mapped.Right = mapExpr(expr.Right, f)
	}
	return f(&mapped)
}

// PermuteColumns returns a component whose column j holds a's column
// permutation[j], with Trace(col, off) nodes rewritten accordingly.
// Ported from permute_columns (component/mod.rs).
func PermuteColumns(a *Component, permutation []int) (*Component, error) {
	if len(permutation) != a.Trace.NumColumns() {
		return nil, fmt.Errorf("component: permutation length %d does not match %d columns", len(permutation), a.Trace.NumColumns())
	}
	result, err := Empty(a.Field, a.Trace.NumRows(), a.Trace.NumColumns())
	if err != nil {
		return nil, err
	}
	projectInto(a, result,
		func(i, j int) (int, int) { return i, permutation[j] },
		func(e *dsl.Expr) *dsl.Expr {
			if e.Kind == dsl.KindTrace {
				e.Column = permutation[e.Column]
			}
			return e
		}, nil)
	return result, nil
}

// Shift rotates rows by amount and multiplies X by g^-amount in every
// constraint, where g generates the trace domain. Ported from shift
// (component/mod.rs).
func Shift(a *Component, amount int) (*Component, error) {
	rows := a.Trace.NumRows()
	if rows <= 1 {
		return a, nil
	}
	amountAbs := indexRotate(rows, 0, amount)

	g, err := a.Field.PrimitiveRootOfUnity(rows)
	if err != nil {
		return nil, err
	}
	gInv, err := g.Inv()
	if err != nil {
		return nil, err
	}
	factor := gInv.Pow(uint64(amountAbs))

	result, err := Empty(a.Field, rows, a.Trace.NumColumns())
	if err != nil {
		return nil, err
	}
	projectInto(a, result,
		func(i, j int) (int, int) { return (i + amountAbs) % rows, j },
		func(e *dsl.Expr) *dsl.Expr {
			if e.Kind == dsl.KindX {
				return dsl.Constant(factor).Mul(e)
			}
			return e
		}, nil)
	for name, label := range result.Labels {
		label.Row = (label.Row + amountAbs) % rows
		result.Labels[name] = label
	}
	return result, nil
}

// Fold halves the number of columns and doubles the number of rows: even
// columns fold into even rows, odd columns into odd rows. Ported from fold
// (component/mod.rs); requires an even column count.
func Fold(a *Component) (*Component, error) {
	cols := a.Trace.NumColumns()
	if cols%2 != 0 {
		return nil, fmt.Errorf("component: fold requires an even column count, got %d", cols)
	}
	rows := a.Trace.NumRows()
	result, err := Empty(a.Field, 2*rows, cols/2)
	if err != nil {
		return nil, err
	}
	projectInto(a, result,
		func(i, j int) (int, int) { return 2*i + (j % 2), j / 2 },
		func(e *dsl.Expr) *dsl.Expr {
			if e.Kind == dsl.KindTrace {
				parity := 0
				if e.Column%2 != 0 {
					parity = 1
				}
				e.Column = e.Column / 2
				e.Offset = 2*e.Offset + parity
			}
			return e
		}, nil)
	for name, label := range result.Labels {
		label.Row *= 2
		result.Labels[name] = label
	}
	return result, nil
}

// ComposeHorizontal concatenates a's and b's columns, prefixing labels
// left_/right_. Ported from compose_horizontal (component/mod.rs).
func ComposeHorizontal(a, b *Component) (*Component, error) {
	if a.Trace.NumRows() != b.Trace.NumRows() {
		return nil, fmt.Errorf("component: compose_horizontal requires equal row counts, got %d and %d", a.Trace.NumRows(), b.Trace.NumRows())
	}
	aCols := a.Trace.NumColumns()
	result, err := Empty(a.Field, a.Trace.NumRows(), aCols+b.Trace.NumColumns())
	if err != nil {
		return nil, err
	}
	projectInto(a, result, func(i, j int) (int, int) { return i, j }, func(e *dsl.Expr) *dsl.Expr { return e },
		func(name string) string { return "left_" + name })
	projectInto(b, result,
		func(i, j int) (int, int) { return i, j + aCols },
		func(e *dsl.Expr) *dsl.Expr {
			if e.Kind == dsl.KindTrace {
				e.Column += aCols
			}
			return e
		},
		func(name string) string { return "right_" + name })
	return result, nil
}

// ComposeVertical stacks a above b (requiring identical constraint
// counts), substituting X -> X^2 in both halves, prefixing labels top_/
// bottom_. Ported from compose_vertical (component/mod.rs).
func ComposeVertical(a, b *Component) (*Component, error) {
	if a.Trace.NumRows() != b.Trace.NumRows() || a.Trace.NumColumns() != b.Trace.NumColumns() {
		return nil, fmt.Errorf("component: compose_vertical requires matching trace shapes")
	}
	if len(a.Constraints) != len(b.Constraints) {
		return nil, fmt.Errorf("component: compose_vertical requires matching constraint counts")
	}
	rows := a.Trace.NumRows()
	result, err := Empty(a.Field, 2*rows, a.Trace.NumColumns())
	if err != nil {
		return nil, err
	}
	squareX := func(e *dsl.Expr) *dsl.Expr {
		if e.Kind == dsl.KindX {
			return e.Pow(2)
		}
		return e
	}
	projectInto(a, result, func(i, j int) (int, int) { return i, j }, squareX, func(n string) string { return "top_" + n })

	bLabels := map[string]Label{}
	for name, label := range b.Labels {
		bLabels["bottom_"+name] = Label{Row: label.Row + rows, Expr: label.Expr}
	}
	bCopy := &Component{Field: b.Field, Trace: b.Trace, Constraints: b.Constraints, Labels: bLabels}
	projectInto(bCopy, result, func(i, j int) (int, int) { return i + rows, j }, squareX, nil)

	// b's constraints were appended by projectInto but are redundant (a's
	// and b's constraint sets must already coincide after squaring X).
	result.Constraints = result.Constraints[:len(a.Constraints)]
	return result, nil
}

// FoldMany applies Fold folds times, horizontally padding with an empty
// single column first whenever the column count is odd. Ported from
// fold_many (component/mod.rs).
func FoldMany(a *Component, folds int) (*Component, error) {
	result := a
	for i := 0; i < folds; i++ {
		if result.Trace.NumColumns()%2 == 1 {
			pad, err := Empty(result.Field, result.Trace.NumRows(), 1)
			if err != nil {
				return nil, err
			}
			composed, err := ComposeHorizontal(result, pad)
			if err != nil {
				return nil, err
			}
			renamed := map[string]Label{}
			for name, label := range composed.Labels {
				renamed[trimLeftPrefix(name, "left_")] = label
			}
			composed.Labels = renamed
			result = composed
		}
		folded, err := Fold(result)
		if err != nil {
			return nil, err
		}
		result = folded
	}
	return result, nil
}

func trimLeftPrefix(s, prefix string) string {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// ComposeFolded horizontally composes two components of potentially
// unequal row counts, folding the shorter one up to match the longer
// first. Ported from compose_folded (component/mod.rs).
func ComposeFolded(a, b *Component) (*Component, error) {
	aLen, bLen := a.Trace.NumRows(), b.Trace.NumRows()
	switch {
	case aLen == bLen:
		return ComposeHorizontal(a, b)
	case aLen < bLen:
		folds := trailingZeros(bLen / aLen)
		aFolded, err := FoldMany(a, folds)
		if err != nil {
			return nil, err
		}
		return ComposeHorizontal(aFolded, b)
	default:
		folds := trailingZeros(aLen / bLen)
		bFolded, err := FoldMany(b, folds)
		if err != nil {
			return nil, err
		}
		return ComposeHorizontal(a, bFolded)
	}
}

func trailingZeros(n int) int {
	count := 0
	for n > 1 && n%2 == 0 {
		n /= 2
		count++
	}
	return count
}
