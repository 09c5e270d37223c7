package analysis

import (
	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/signatures"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// ClassifyScope applies the scope decision table in strict
// precedence order, first match wins:
//
//  1. UI framework signature in the method or its helpers -> UI
//  2. API framework signature -> API
//  3. zero focal classes -> Library
//  4. one focal class -> Unit
//  5. two or more -> Integration
//
// Protocol/UI framework usage is a stronger scope signal than
// focal-class cardinality: such tests are architecturally
// integration-like no matter how many application classes they
// touch. A method with no framework evidence at all is Unknown, not
// omitted.
func (a *Analyzer) ClassifyScope(root codemodel.MethodRef, helpers []codemodel.MethodRef, frameworks []signatures.Framework, focalCount int) taxonomy.TestType {
	if a.usesFrameworkKind(root, helpers, frameworks, signatures.KindUI) {
		return taxonomy.TestTypeUI
	}
	if a.usesFrameworkKind(root, helpers, frameworks, signatures.KindAPI) {
		return taxonomy.TestTypeAPI
	}
	if len(frameworks) == 0 {
		return taxonomy.TestTypeUnknown
	}
	switch focalCount {
	case 0:
		return taxonomy.TestTypeLibrary
	case 1:
		return taxonomy.TestTypeUnit
	default:
		return taxonomy.TestTypeIntegration
	}
}

// usesFrameworkKind reports whether a framework of the given kind is
// evidenced either at class level or by a call site in the method or
// any reachable helper.
func (a *Analyzer) usesFrameworkKind(root codemodel.MethodRef, helpers []codemodel.MethodRef, frameworks []signatures.Framework, kind signatures.FrameworkKind) bool {
	for _, fw := range frameworks {
		if fw.Kind == kind {
			return true
		}
	}

	kindFrameworks := make([]signatures.Framework, 0, 4)
	for _, fw := range a.tables.Frameworks() {
		if fw.Kind == kind {
			kindFrameworks = append(kindFrameworks, fw)
		}
	}

	scope := append([]codemodel.MethodRef{root}, helpers...)
	for _, ref := range scope {
		method, ok := a.model.Method(ref)
		if !ok {
			continue
		}
		for _, cs := range method.CallSites {
			for _, fw := range kindFrameworks {
				if classInFramework(cs.CalleeClass, fw) || classInFramework(cs.ReceiverType, fw) {
					return true
				}
			}
		}
	}
	return false
}

func classInFramework(class string, fw signatures.Framework) bool {
	if class == "" {
		return false
	}
	for _, pkg := range fw.Packages {
		if len(class) >= len(pkg) && class[:len(pkg)] == pkg &&
			(len(class) == len(pkg) || class[len(pkg)] == '.') {
			return true
		}
	}
	return false
}
