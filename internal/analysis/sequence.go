package analysis

import (
	"sort"

	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// Sequence builds the ordered call/assertion sequence of a test
// method: the source-order traversal of its body with reachable
// helper bodies inlined at their call sites. Entries from helper
// bodies are marked wrapped. The walk shares the reachability
// bounds (visited set + depth), so cyclic helper graphs terminate.
func (a *Analyzer) Sequence(root codemodel.MethodRef) []taxonomy.CallAssertionEntry {
	w := &sequenceWalker{
		analyzer: a,
		root:     root,
		visited:  map[codemodel.MethodRef]bool{root: true},
		helperScope: func() map[string]bool {
			scope := map[string]bool{root.Class: true}
			for _, sup := range a.model.SuperClasses(root.Class) {
				scope[sup] = true
			}
			return scope
		}(),
	}
	w.walk(root, 0)
	if w.entries == nil {
		return []taxonomy.CallAssertionEntry{}
	}
	return w.entries
}

type sequenceWalker struct {
	analyzer    *Analyzer
	root        codemodel.MethodRef
	entries     []taxonomy.CallAssertionEntry
	visited     map[codemodel.MethodRef]bool
	helperScope map[string]bool
}

func (w *sequenceWalker) walk(ref codemodel.MethodRef, depth int) {
	method, ok := w.analyzer.model.Method(ref)
	if !ok {
		return
	}

	sites := make([]codemodel.CallSite, len(method.CallSites))
	copy(sites, method.CallSites)
	sort.SliceStable(sites, func(i, j int) bool {
		return sites[i].Position < sites[j].Position
	})

	for _, cs := range sites {
		w.entries = append(w.entries, w.classify(cs, depth > 0))

		callee := cs.Ref()
		if callee.Class == "" || w.visited[callee] {
			continue
		}
		if depth+1 >= w.analyzer.cfg.Reachability.MaxDepth {
			continue
		}
		if !w.helperScope[callee.Class] || !w.analyzer.isApplicationClass(callee.Class) {
			continue
		}
		if _, hasBody := w.analyzer.model.Method(callee); !hasBody {
			continue
		}
		w.visited[callee] = true
		w.walk(callee, depth+1)
	}
}

// classify turns one call site into a sequence entry. Mock-framework
// calls are tagged mock-setup and kept out of assertion and
// regular-call counts; assertion signatures outside every category
// are tagged Unclassified rather than dropped.
func (w *sequenceWalker) classify(cs codemodel.CallSite, wrapped bool) taxonomy.CallAssertionEntry {
	entry := taxonomy.CallAssertionEntry{
		Position: len(w.entries),
		Callee:   calleeLabel(cs),
		Wrapped:  wrapped,
	}

	tables := w.analyzer.tables
	if _, ok := tables.MockCall(cs.CalleeClass, cs.Method); ok {
		entry.Kind = taxonomy.KindMockSetup
		return entry
	}
	if tables.IsAssertion(cs.CalleeClass, cs.Method) {
		entry.Kind = taxonomy.KindAssertion
		if cat, ok := tables.AssertionCategory(cs.Method); ok {
			entry.Category = cat
		} else {
			entry.Category = taxonomy.CategoryUnclassified
		}
		return entry
	}
	entry.Kind = taxonomy.KindRegularCall
	return entry
}

func calleeLabel(cs codemodel.CallSite) string {
	if ref := cs.Ref(); ref.Class != "" {
		return ref.String()
	}
	return cs.Signature
}
