// Package covlint provides static analysis checks for the covkit API.
//
// This analyzer detects common mistakes when using the coverage packages:
//   - Empty algorithm names passed to a registry Lookup, Run or Register, or
//     to localization.Lookup. They always fail with ErrUnknownAlgorithm.
//   - Discarded errors from a prioritizer's Next(). The error is how the
//     ordering ends (ErrExhausted), so a loop that drops it never stops.
//
// Usage:
//
//	go install github.com/example/covkit/cmd/covlint@latest
//	covlint ./...
package covlint

import (
	"go/ast"
	"go/constant"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

const (
	clusteringPkg     = "coverage/clustering"
	prioritizationPkg = "coverage/prioritization"
	localizationPkg   = "coverage/localization"
)

// Analyzer is the covkit lint analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "covlint",
	Doc:      "checks for common covkit API mistakes",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
		(*ast.ExprStmt)(nil),
		(*ast.AssignStmt)(nil),
	}
	inspect.Preorder(nodeFilter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.CallExpr:
			checkAlgorithmName(pass, n)
		case *ast.ExprStmt:
			if call, ok := n.X.(*ast.CallExpr); ok && isNext(pass, call) {
				pass.Reportf(call.Pos(), "result of Next discarded - the ordering ends with ErrExhausted")
			}
		case *ast.AssignStmt:
			checkNextAssign(pass, n)
		}
	})

	return nil, nil
}

// checkAlgorithmName reports registry lookups with an empty name.
func checkAlgorithmName(pass *analysis.Pass, call *ast.CallExpr) {
	fn := callee(pass, call)
	if fn == nil || len(call.Args) == 0 {
		return
	}

	var name string
	switch {
	case fn.Name() == "Lookup" && inPackage(fn, localizationPkg) && receiver(fn) == "":
		name = "localization.Lookup"
	case (inPackage(fn, clusteringPkg) || inPackage(fn, prioritizationPkg)) && receiver(fn) == "Registry":
		switch fn.Name() {
		case "Lookup", "Run", "Register":
			name = "Registry." + fn.Name()
		}
	}
	if name != "" && isEmptyString(pass, call.Args[0]) {
		pass.Reportf(call.Args[0].Pos(), "%s called with an empty algorithm name - always fails with ErrUnknownAlgorithm", name)
	}
}

// checkNextAssign reports `id, _ := p.Next()`.
func checkNextAssign(pass *analysis.Pass, assign *ast.AssignStmt) {
	if len(assign.Lhs) != 2 || len(assign.Rhs) != 1 {
		return
	}
	call, ok := assign.Rhs[0].(*ast.CallExpr)
	if !ok || !isNext(pass, call) {
		return
	}
	if id, ok := assign.Lhs[1].(*ast.Ident); ok && id.Name == "_" {
		pass.Reportf(id.Pos(), "error from Next discarded - the ordering ends with ErrExhausted")
	}
}

// isNext reports whether call is Next() on a prioritizer.
func isNext(pass *analysis.Pass, call *ast.CallExpr) bool {
	fn := callee(pass, call)
	if fn == nil || fn.Name() != "Next" || !inPackage(fn, prioritizationPkg) {
		return false
	}
	results := fn.Type().(*types.Signature).Results()
	return results.Len() == 2 && types.Identical(results.At(1).Type(), types.Universe.Lookup("error").Type())
}

func callee(pass *analysis.Pass, call *ast.CallExpr) *types.Func {
	fn, _ := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
	if fn == nil || fn.Pkg() == nil {
		return nil
	}
	return fn
}

// inPackage matches the package path by suffix so vendored and renamed
// module paths still count.
func inPackage(fn *types.Func, suffix string) bool {
	path := fn.Pkg().Path()
	return path == suffix || strings.HasSuffix(path, "/"+suffix)
}

// receiver returns the name of the receiver's type, or "" for functions.
func receiver(fn *types.Func) string {
	recv := fn.Type().(*types.Signature).Recv()
	if recv == nil {
		return ""
	}
	t := recv.Type()
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return ""
}

// isEmptyString reports whether expr is a constant empty string.
func isEmptyString(pass *analysis.Pass, expr ast.Expr) bool {
	tv, ok := pass.TypesInfo.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return false
	}
	return constant.StringVal(tv.Value) == ""
}
