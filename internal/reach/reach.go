// Package reach computes the bounded, cycle-safe set of helper
// methods transitively reachable from a test method through the code
// model's call sites.
package reach

import (
	"sort"
	"sync"

	"github.com/unbound-force/testscope/internal/codemodel"
)

// Options bounds and scopes a reachability traversal.
type Options struct {
	// MaxDepth is the maximum call-hierarchy depth expanded below
	// the root.
	MaxDepth int

	// MaxVisited caps the number of distinct methods expanded per
	// root. Methods hit past the cap are still recorded as leaves.
	MaxVisited int

	// OnlyHelpers restricts the set to methods declared on the
	// root's class or its superclass chain; other application
	// classes' methods terminate the walk as leaves and are not
	// recorded.
	OnlyHelpers bool
}

// DefaultOptions returns traversal bounds suitable for corpus runs.
func DefaultOptions() Options {
	return Options{
		MaxDepth:    5,
		MaxVisited:  512,
		OnlyHelpers: true,
	}
}

// Resolver computes reachability sets over one code model. The
// per-root results are memoized; a Resolver is safe for concurrent
// use.
type Resolver struct {
	model *codemodel.Model
	opts  Options

	// isApp decides the application-code boundary. Nil means every
	// class present in the model qualifies.
	isApp func(class string) bool

	mu    sync.Mutex
	cache map[codemodel.MethodRef][]codemodel.MethodRef
}

// NewResolver builds a resolver over model. isApp may be nil.
func NewResolver(model *codemodel.Model, opts Options, isApp func(string) bool) *Resolver {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 5
	}
	if opts.MaxVisited <= 0 {
		opts.MaxVisited = 512
	}
	return &Resolver{
		model: model,
		opts:  opts,
		isApp: isApp,
		cache: make(map[codemodel.MethodRef][]codemodel.MethodRef),
	}
}

// Reachable returns the set of methods transitively called from
// root, sorted by class then signature. The root itself is never a
// member via the empty path; it appears only if some cycle leads
// back to it. Unresolved callees (no body in the model) are recorded
// as leaves and not expanded. The traversal is visited-set guarded
// and bounded, so cyclic and adversarial graphs terminate.
func (r *Resolver) Reachable(root codemodel.MethodRef) []codemodel.MethodRef {
	r.mu.Lock()
	if cached, ok := r.cache[root]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	set := r.collect(root)

	out := make([]codemodel.MethodRef, 0, len(set))
	for ref := range set {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].Signature < out[j].Signature
	})

	r.mu.Lock()
	r.cache[root] = out
	r.mu.Unlock()
	return out
}

type frame struct {
	ref   codemodel.MethodRef
	depth int
}

func (r *Resolver) collect(root codemodel.MethodRef) map[codemodel.MethodRef]bool {
	helpers := r.helperScope(root)

	result := make(map[codemodel.MethodRef]bool)
	visited := map[codemodel.MethodRef]bool{root: true}
	expanded := 0

	stack := []frame{{ref: root, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		method, ok := r.model.Method(f.ref)
		if !ok {
			continue
		}

		for _, cs := range method.CallSites {
			callee := cs.Ref()
			if callee.Class == "" {
				// No resolved identity to record.
				continue
			}
			if !r.inScope(callee.Class, helpers) {
				continue
			}
			result[callee] = true

			if visited[callee] {
				continue
			}
			visited[callee] = true

			if expanded >= r.opts.MaxVisited {
				continue // leaf: budget exhausted
			}
			if f.depth+1 >= r.opts.MaxDepth {
				continue // leaf: depth bound
			}
			if _, hasBody := r.model.Method(callee); !hasBody {
				continue // leaf: unresolved callee
			}
			expanded++
			stack = append(stack, frame{ref: callee, depth: f.depth + 1})
		}
	}

	return result
}

// helperScope returns the allowed declaring classes when OnlyHelpers
// is set: the root's class plus its superclass chain.
func (r *Resolver) helperScope(root codemodel.MethodRef) map[string]bool {
	if !r.opts.OnlyHelpers {
		return nil
	}
	scope := map[string]bool{root.Class: true}
	for _, sup := range r.model.SuperClasses(root.Class) {
		scope[sup] = true
	}
	return scope
}

func (r *Resolver) inScope(class string, helpers map[string]bool) bool {
	if r.isApp != nil && !r.isApp(class) {
		return false
	}
	if helpers != nil && !helpers[class] {
		return false
	}
	return true
}
