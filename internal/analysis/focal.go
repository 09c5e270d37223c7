package analysis

import (
	"sort"

	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// FocalClasses derives the focal class set for a test method from
// the class references in its body and its reachable helpers.
//
// Each reference is either an invocation reference (a method is
// called directly on an instance, or the instance is the direct
// target of an assertion) or a producer/consumer reference (the
// instance is only constructed, passed, or returned). Only
// invocation references make a class eligible: a class that is
// merely declared, constructed, or handed around never becomes
// focal. Eligible classes are ranked by invocation frequency and
// every class tied at the maximum is retained; multiple top-ranked
// classes are legitimate and drive integration classification.
func (a *Analyzer) FocalClasses(root codemodel.MethodRef, helpers []codemodel.MethodRef) []taxonomy.FocalClass {
	invocations := make(map[string]int)

	// Classes in the helper scope (the test class hierarchy) are
	// never focal: calls on them are the helpers themselves.
	helperScope := map[string]bool{root.Class: true}
	for _, sup := range a.model.SuperClasses(root.Class) {
		helperScope[sup] = true
	}

	scope := append([]codemodel.MethodRef{root}, helpers...)
	for _, ref := range scope {
		method, ok := a.model.Method(ref)
		if !ok {
			continue
		}
		a.countInvocations(method, helperScope, invocations)
	}

	max := 0
	for _, n := range invocations {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return []taxonomy.FocalClass{}
	}

	var focal []taxonomy.FocalClass
	for class, n := range invocations {
		if n == max {
			focal = append(focal, taxonomy.FocalClass{Name: class, Invocations: n})
		}
	}
	sort.Slice(focal, func(i, j int) bool { return focal[i].Name < focal[j].Name })
	return focal
}

// countInvocations adds one method body's invocation references to
// the frequency map. Producer/consumer references (constructor
// calls, argument passing, variable declarations) contribute
// nothing: the exclusion rule falls out of never counting them.
func (a *Analyzer) countInvocations(method *codemodel.Method, helperScope map[string]bool, invocations map[string]int) {
	eligible := func(class string) bool {
		return class != "" && !helperScope[class] && a.isApplicationClass(class)
	}

	for _, cs := range method.CallSites {
		if cs.IsConstructor {
			continue
		}

		// An assertion's direct argument counts as an invocation
		// reference for the argument's class.
		if a.tables.IsAssertion(cs.CalleeClass, cs.Method) {
			for _, argType := range cs.ArgTypes {
				if eligible(argType) {
					invocations[argType]++
				}
			}
			continue
		}

		// A direct method call on an instance is an invocation
		// reference for the receiver's class.
		recv := cs.ReceiverType
		if recv == "" {
			recv = cs.CalleeClass
		}
		if eligible(recv) {
			invocations[recv]++
		}
	}
}
