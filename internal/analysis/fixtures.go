package analysis

import (
	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/signatures"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// Fixtures scans a test class (and its superclasses) for setup and
// teardown methods, classifying each by role and declared execution
// phase. Teardown bodies are additionally scanned for resource
// cleanup calls, correlated by type with resources instantiated in
// the class's setups. Unmatched cleanups are recorded, not errors.
func (a *Analyzer) Fixtures(cls *codemodel.Class, frameworks []signatures.Framework) (setups, teardowns []taxonomy.FixtureInfo) {
	classes := []string{cls.Name}
	classes = append(classes, a.model.SuperClasses(cls.Name)...)

	for _, className := range classes {
		c, ok := a.model.Class(className)
		if !ok {
			continue
		}
		for i := range c.Methods {
			method := &c.Methods[i]
			if fi, ok := a.fixtureFor(className, method, frameworks, taxonomy.RoleSetup); ok {
				setups = append(setups, fi)
			}
			if fi, ok := a.fixtureFor(className, method, frameworks, taxonomy.RoleTeardown); ok {
				teardowns = append(teardowns, fi)
			}
		}
	}

	// Resource types constructed in setups, for cleanup correlation.
	setupResources := make(map[string]bool)
	for _, s := range setups {
		method, ok := a.model.Method(codemodel.MethodRef{Class: s.Class, Signature: s.Signature})
		if !ok {
			continue
		}
		for _, cs := range method.CallSites {
			if cs.IsConstructor && cs.CalleeClass != "" {
				setupResources[cs.CalleeClass] = true
			}
		}
		for _, v := range method.Variables {
			setupResources[v.Type] = true
		}
	}

	for i := range teardowns {
		teardowns[i].CleanupCalls = a.cleanupCalls(teardowns[i], setupResources)
	}

	return setups, teardowns
}

// fixtureFor classifies one method as a fixture of the given role,
// by framework annotation first, then by naming convention.
func (a *Analyzer) fixtureFor(className string, method *codemodel.Method, frameworks []signatures.Framework, role taxonomy.FixtureRole) (taxonomy.FixtureInfo, bool) {
	for _, fw := range frameworks {
		for _, ann := range method.Annotations {
			var order taxonomy.ExecutionOrder
			var ok bool
			if role == taxonomy.RoleSetup {
				order, ok = signatures.SetupOrder(fw, ann)
			} else {
				order, ok = signatures.TeardownOrder(fw, ann)
			}
			if ok {
				return taxonomy.FixtureInfo{
					Class:     className,
					Signature: method.Signature,
					Role:      role,
					Order:     order,
					Framework: fw.Name,
				}, true
			}
		}

		names := fw.SetupNames
		orderName := fw.SetupNameOrder
		if role == taxonomy.RoleTeardown {
			names = fw.TeardownNames
			orderName = fw.TeardownNameOrder
		}
		for _, name := range names {
			if method.Signature == name {
				order := taxonomy.OrderUnknown
				if orderName != "" {
					order = taxonomy.ExecutionOrder(orderName)
				}
				return taxonomy.FixtureInfo{
					Class:     className,
					Signature: method.Signature,
					Role:      role,
					Order:     order,
					Framework: fw.Name,
				}, true
			}
		}
	}
	return taxonomy.FixtureInfo{}, false
}

// cleanupCalls extracts resource-cleanup invocations from one
// teardown body.
func (a *Analyzer) cleanupCalls(fixture taxonomy.FixtureInfo, setupResources map[string]bool) []taxonomy.CleanupCall {
	method, ok := a.model.Method(codemodel.MethodRef{Class: fixture.Class, Signature: fixture.Signature})
	if !ok {
		return nil
	}
	var calls []taxonomy.CleanupCall
	for _, cs := range method.CallSites {
		if cs.IsConstructor || !a.tables.IsCleanup(cs.Method) {
			continue
		}
		resource := cs.ReceiverType
		if resource == "" {
			resource = cs.CalleeClass
		}
		calls = append(calls, taxonomy.CleanupCall{
			Method:       cs.Method,
			ResourceType: resource,
			MatchesSetup: resource != "" && setupResources[resource],
		})
	}
	return calls
}
