package analysis

import (
	"sort"
	"strings"

	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/signatures"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// Mocks detects mocking framework usage for one test method. Mocked
// types come from annotated fields (@Mock, @Mocked, ...) and from
// mock-creation calls in the method or its helpers; stub and verify
// calls are attributed to a mock by matching argument or receiver
// types. Several frameworks may be in use at once; each is reported
// independently.
func (a *Analyzer) Mocks(cls *codemodel.Class, root codemodel.MethodRef, helpers []codemodel.MethodRef) []taxonomy.MockInfo {
	anns := append([]string{}, cls.Annotations...)
	for _, f := range cls.Fields {
		anns = append(anns, f.Annotations...)
	}
	frameworks := a.tables.MockFrameworksFor(cls.Imports, anns)
	if len(frameworks) == 0 {
		return nil
	}

	scope := append([]codemodel.MethodRef{root}, helpers...)

	var out []taxonomy.MockInfo
	for _, fw := range frameworks {
		mocks := a.mocksForFramework(cls, fw, scope)
		out = append(out, mocks...)
	}
	return out
}

func (a *Analyzer) mocksForFramework(cls *codemodel.Class, fw signatures.MockFramework, scope []codemodel.MethodRef) []taxonomy.MockInfo {
	// Mocked types, in discovery order: annotated fields first,
	// then creation calls.
	mocked := make(map[string]*taxonomy.MockInfo)
	var order []string

	addMock := func(typ string) {
		if typ == "" {
			return
		}
		if _, ok := mocked[typ]; !ok {
			mocked[typ] = &taxonomy.MockInfo{Framework: fw.Name, MockedType: typ}
			order = append(order, typ)
		}
	}

	for _, f := range cls.Fields {
		for _, ann := range f.Annotations {
			if fw.HasAnnotation(ann) {
				addMock(f.Type)
			}
		}
	}

	for _, ref := range scope {
		method, ok := a.model.Method(ref)
		if !ok {
			continue
		}
		for _, cs := range method.CallSites {
			if fw.IsCreation(cs.Method) {
				addMock(mockedTypeOf(cs))
			}
		}
	}

	// Attribute stub/verify calls by argument or receiver type.
	for _, ref := range scope {
		method, ok := a.model.Method(ref)
		if !ok {
			continue
		}
		for _, cs := range method.CallSites {
			isStub := fw.IsStub(cs.Method)
			isVerify := fw.IsVerify(cs.Method)
			if !isStub && !isVerify {
				continue
			}
			mi := matchMock(mocked, cs)
			if mi == nil {
				continue
			}
			if isStub {
				mi.StubCalls++
			} else {
				mi.VerifyCalls++
			}
		}
	}

	out := make([]taxonomy.MockInfo, 0, len(order))
	for _, typ := range order {
		out = append(out, *mocked[typ])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MockedType < out[j].MockedType })
	return out
}

// mockedTypeOf extracts the type being mocked from a creation call
// like mock(OrderService.class).
func mockedTypeOf(cs codemodel.CallSite) string {
	if len(cs.ArgTypes) > 0 && cs.ArgTypes[0] != "" {
		return cs.ArgTypes[0]
	}
	if len(cs.ArgNames) > 0 {
		return strings.TrimSuffix(cs.ArgNames[0], ".class")
	}
	return ""
}

// matchMock finds the mock a stub/verify call refers to, by argument
// type, then receiver type, then sole-mock fallback.
func matchMock(mocked map[string]*taxonomy.MockInfo, cs codemodel.CallSite) *taxonomy.MockInfo {
	for _, argType := range cs.ArgTypes {
		if mi, ok := mocked[argType]; ok {
			return mi
		}
	}
	if mi, ok := mocked[cs.ReceiverType]; ok {
		return mi
	}
	if len(mocked) == 1 {
		for _, mi := range mocked {
			return mi
		}
	}
	return nil
}
