package analysis

import (
	"context"
	"testing"

	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/config"
	"github.com/unbound-force/testscope/internal/signatures"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// newTestAnalyzer builds an analyzer over a project with default
// tables and configuration.
func newTestAnalyzer(t *testing.T, p *codemodel.Project) *Analyzer {
	t.Helper()
	return New(codemodel.NewModel(p), signatures.Default(), config.DefaultConfig(), nil, "test")
}

func junit5TestClass(name string, methods ...codemodel.Method) codemodel.Class {
	return codemodel.Class{
		Name:    name,
		Imports: []string{"org.junit.jupiter.api.Test", "org.junit.jupiter.api.Assertions"},
		Methods: methods,
	}
}

func TestAnalyzeProject(t *testing.T) {
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			junit5TestClass("com.shop.CartTest",
				codemodel.Method{
					Signature:   "addsItem()",
					Annotations: []string{"@Test"},
					Code:        "cart.add(item);\nAssertions.assertEquals(1, cart.size());",
					CallSites: []codemodel.CallSite{
						{Method: "add", Signature: "add(Item)", CalleeClass: "com.shop.Cart", ReceiverType: "com.shop.Cart", Position: 0},
						{Method: "size", Signature: "size()", CalleeClass: "com.shop.Cart", ReceiverType: "com.shop.Cart", Position: 1},
						{Method: "assertEquals", Signature: "assertEquals(int,int)", CalleeClass: "org.junit.jupiter.api.Assertions", Position: 2},
					},
				},
			),
			junit5TestClass("com.shop.OrderTest",
				codemodel.Method{
					Signature:   "placesOrder()",
					Annotations: []string{"@Test"},
					Code:        "service.place(order);",
					CallSites: []codemodel.CallSite{
						{Method: "place", Signature: "place(Order)", CalleeClass: "com.shop.OrderService", ReceiverType: "com.shop.OrderService", Position: 0},
						{Method: "assertNotNull", Signature: "assertNotNull(Object)", CalleeClass: "org.junit.jupiter.api.Assertions", Position: 1},
					},
				},
			),
			{Name: "com.shop.Cart", Methods: []codemodel.Method{{Signature: "add(Item)"}, {Signature: "size()"}}},
			{Name: "com.shop.OrderService", Methods: []codemodel.Method{{Signature: "place(Order)"}}},
		},
	}

	a := newTestAnalyzer(t, p)
	pa, err := a.AnalyzeProject(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeProject failed: %v", err)
	}

	if pa.Project != "shop" {
		t.Errorf("Project = %q", pa.Project)
	}
	if len(pa.Classes) != 2 {
		t.Fatalf("expected 2 test classes, got %d", len(pa.Classes))
	}
	// Declaration order is preserved regardless of worker scheduling.
	if pa.Classes[0].Class != "com.shop.CartTest" || pa.Classes[1].Class != "com.shop.OrderTest" {
		t.Errorf("class order = %q, %q", pa.Classes[0].Class, pa.Classes[1].Class)
	}
	if pa.Totals.TestMethods != 2 {
		t.Errorf("TestMethods = %d, want 2", pa.Totals.TestMethods)
	}
	if pa.Totals.Assertions != 2 {
		t.Errorf("Assertions = %d, want 2", pa.Totals.Assertions)
	}
	if pa.Metadata.Version != "test" {
		t.Errorf("Metadata.Version = %q", pa.Metadata.Version)
	}
	if pa.Metadata.Timestamp.IsZero() {
		t.Error("Metadata.Timestamp not set")
	}
}

func TestAnalyzeProject_Deterministic(t *testing.T) {
	var classes []codemodel.Class
	for _, name := range []string{"com.a.ATest", "com.a.BTest", "com.a.CTest", "com.a.DTest"} {
		classes = append(classes, junit5TestClass(name,
			codemodel.Method{Signature: "runs()", Annotations: []string{"@Test"}},
		))
	}
	p := &codemodel.Project{Name: "multi", Classes: classes}

	first, err := newTestAnalyzer(t, p).AnalyzeProject(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		pa, err := newTestAnalyzer(t, p).AnalyzeProject(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		for j := range pa.Classes {
			if pa.Classes[j].Class != first.Classes[j].Class {
				t.Fatalf("run %d: class order differs at %d: %q vs %q",
					i, j, pa.Classes[j].Class, first.Classes[j].Class)
			}
			if len(pa.Classes[j].Methods) > 0 &&
				pa.Classes[j].Methods[0].ID != first.Classes[j].Methods[0].ID {
				t.Fatalf("run %d: method ID differs", i)
			}
		}
	}
}

func TestAnalyzeProject_CancelledContext(t *testing.T) {
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			junit5TestClass("com.shop.CartTest",
				codemodel.Method{Signature: "runs()", Annotations: []string{"@Test"}}),
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestAnalyzer(t, p).AnalyzeProject(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestIsTestMethod_FrameworkAnnotations(t *testing.T) {
	cls := junit5TestClass("com.shop.CartTest",
		codemodel.Method{Signature: "annotated()", Annotations: []string{"@Test"}},
		codemodel.Method{Signature: "parameterized(int)", Annotations: []string{"@ParameterizedTest"}},
		codemodel.Method{Signature: "plainHelper()"},
		codemodel.Method{Signature: "CartTest()", IsConstructor: true},
	)
	p := &codemodel.Project{Name: "shop", Classes: []codemodel.Class{cls}}
	a := newTestAnalyzer(t, p)

	c, _ := a.model.Class("com.shop.CartTest")
	frameworks := a.classFrameworks(c)

	tests := []struct {
		signature string
		want      bool
	}{
		{"annotated()", true},
		{"parameterized(int)", true},
		{"plainHelper()", false},
		{"CartTest()", false},
	}
	for _, tt := range tests {
		var method *codemodel.Method
		for i := range c.Methods {
			if c.Methods[i].Signature == tt.signature {
				method = &c.Methods[i]
			}
		}
		if got := a.isTestMethod(c, method, frameworks); got != tt.want {
			t.Errorf("isTestMethod(%q) = %v, want %v", tt.signature, got, tt.want)
		}
	}
}

func TestIsTestMethod_JUnit3NamePrefix(t *testing.T) {
	cls := codemodel.Class{
		Name:    "com.shop.LegacyTest",
		Imports: []string{"junit.framework.TestCase"},
		Methods: []codemodel.Method{
			{Signature: "testAddition()"},
			{Signature: "helper()"},
		},
	}
	p := &codemodel.Project{Name: "shop", Classes: []codemodel.Class{cls}}
	a := newTestAnalyzer(t, p)

	c, _ := a.model.Class("com.shop.LegacyTest")
	frameworks := a.classFrameworks(c)

	if !a.isTestMethod(c, &c.Methods[0], frameworks) {
		t.Error("expected testAddition() to be a junit3 test by name prefix")
	}
	if a.isTestMethod(c, &c.Methods[1], frameworks) {
		t.Error("helper() must not be a test method")
	}
}

// Classes with no framework evidence but conventional naming still
// surface, with unknown-typed methods, instead of disappearing from
// the corpus.
func TestAnalyzeProject_NoFrameworkEvidence(t *testing.T) {
	cls := codemodel.Class{
		Name: "com.shop.BareTest",
		Methods: []codemodel.Method{
			{Signature: "testSomething()", Code: "run();"},
		},
	}
	p := &codemodel.Project{Name: "shop", Classes: []codemodel.Class{cls}}

	pa, err := newTestAnalyzer(t, p).AnalyzeProject(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pa.Classes) != 1 {
		t.Fatalf("expected bare test class in results, got %d classes", len(pa.Classes))
	}
	if len(pa.Classes[0].Frameworks) != 0 {
		t.Errorf("expected no frameworks, got %v", pa.Classes[0].Frameworks)
	}
	if len(pa.Classes[0].Methods) != 1 {
		t.Fatalf("expected 1 method, got %d", len(pa.Classes[0].Methods))
	}
	if got := pa.Classes[0].Methods[0].TestType; got != taxonomy.TestTypeUnknown {
		t.Errorf("TestType = %q, want unknown", got)
	}
}

func TestAnalyzeClass_MethodPanicRecovered(t *testing.T) {
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			junit5TestClass("com.shop.CartTest",
				codemodel.Method{Signature: "addsItem()", Annotations: []string{"@Test"}},
				codemodel.Method{Signature: "removesItem()", Annotations: []string{"@Test"}},
			),
		},
	}
	a := newTestAnalyzer(t, p)

	analyzeMethodHook = func(root codemodel.MethodRef) {
		if root.Signature == "addsItem()" {
			panic("injected failure")
		}
	}
	defer func() { analyzeMethodHook = nil }()

	cls, _ := a.model.Class("com.shop.CartTest")
	tca := a.AnalyzeClass(cls)

	if len(tca.Skipped) != 1 || tca.Skipped[0] != "addsItem()" {
		t.Fatalf("Skipped = %v, want [addsItem()]", tca.Skipped)
	}
	if len(tca.Methods) != 1 || tca.Methods[0].Signature != "removesItem()" {
		t.Errorf("surviving methods = %+v", tca.Methods)
	}
}

func TestAnalyzeProject_MethodPanicDoesNotAbortBatch(t *testing.T) {
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			junit5TestClass("com.shop.CartTest",
				codemodel.Method{Signature: "explodes()", Annotations: []string{"@Test"}},
			),
			junit5TestClass("com.shop.OrderTest",
				codemodel.Method{Signature: "places()", Annotations: []string{"@Test"}},
			),
		},
	}
	a := newTestAnalyzer(t, p)

	analyzeMethodHook = func(root codemodel.MethodRef) {
		if root.Signature == "explodes()" {
			panic("injected failure")
		}
	}
	defer func() { analyzeMethodHook = nil }()

	pa, err := a.AnalyzeProject(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeProject failed: %v", err)
	}
	if len(pa.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(pa.Classes))
	}
	if pa.Totals.Skipped != 1 {
		t.Errorf("Totals.Skipped = %d, want 1", pa.Totals.Skipped)
	}
	if pa.Totals.TestMethods != 1 {
		t.Errorf("Totals.TestMethods = %d, want 1", pa.Totals.TestMethods)
	}
}

func TestAnalyzeClass_BDDFlag(t *testing.T) {
	cls := codemodel.Class{
		Name:    "com.shop.CheckoutSteps",
		Imports: []string{"io.cucumber.java.en.Given"},
		Methods: []codemodel.Method{
			{Signature: "aCart()", Annotations: []string{"@Given(\"a cart\")"}},
		},
	}
	p := &codemodel.Project{Name: "shop", Classes: []codemodel.Class{cls}}
	a := newTestAnalyzer(t, p)

	c, _ := a.model.Class("com.shop.CheckoutSteps")
	tca := a.AnalyzeClass(c)

	if !tca.IsBDD {
		t.Error("expected cucumber class to be flagged BDD")
	}
	if len(tca.Methods) != 1 {
		t.Errorf("expected 1 step method, got %d", len(tca.Methods))
	}
}

func TestAnalyzeProject_InterfacesSkipped(t *testing.T) {
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			{
				Name:        "com.shop.ContractTest",
				IsInterface: true,
				Imports:     []string{"org.junit.jupiter.api.Test"},
				Methods:     []codemodel.Method{{Signature: "verifies()", Annotations: []string{"@Test"}}},
			},
		},
	}
	pa, err := newTestAnalyzer(t, p).AnalyzeProject(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pa.Classes) != 0 {
		t.Errorf("interfaces must not be analyzed as test classes, got %d", len(pa.Classes))
	}
}

func TestGeneratedIDsAreStable(t *testing.T) {
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			junit5TestClass("com.shop.CartTest",
				codemodel.Method{Signature: "addsItem()", Annotations: []string{"@Test"}}),
		},
	}

	pa1, err := newTestAnalyzer(t, p).AnalyzeProject(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pa2, err := newTestAnalyzer(t, p).AnalyzeProject(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	id1 := pa1.Classes[0].Methods[0].ID
	id2 := pa2.Classes[0].Methods[0].ID
	if id1 != id2 {
		t.Errorf("IDs differ across runs: %q vs %q", id1, id2)
	}
	if id1 != taxonomy.GenerateID("shop", "com.shop.CartTest", "addsItem()") {
		t.Errorf("ID %q does not match identity hash", id1)
	}
}
