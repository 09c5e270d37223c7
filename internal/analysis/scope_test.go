package analysis

import (
	"testing"

	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/signatures"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

func TestClassifyScope_FocalCardinality(t *testing.T) {
	a := newTestAnalyzer(t, &codemodel.Project{Name: "shop"})
	root := codemodel.MethodRef{Class: "com.shop.CartTest", Signature: "runs()"}
	junit5, ok := a.tables.Framework("junit5")
	if !ok {
		t.Fatal("junit5 framework missing from defaults")
	}
	frameworks := []signatures.Framework{junit5}

	tests := []struct {
		name       string
		focalCount int
		want       taxonomy.TestType
	}{
		{"zero focal is library", 0, taxonomy.TestTypeLibrary},
		{"one focal is unit", 1, taxonomy.TestTypeUnit},
		{"two focal is integration", 2, taxonomy.TestTypeIntegration},
		{"many focal is integration", 5, taxonomy.TestTypeIntegration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.ClassifyScope(root, nil, frameworks, tt.focalCount)
			if got != tt.want {
				t.Errorf("ClassifyScope(focal=%d) = %q, want %q", tt.focalCount, got, tt.want)
			}
		})
	}
}

func TestClassifyScope_UnknownWithoutFrameworks(t *testing.T) {
	a := newTestAnalyzer(t, &codemodel.Project{Name: "shop"})
	root := codemodel.MethodRef{Class: "com.shop.CartTest", Signature: "runs()"}

	got := a.ClassifyScope(root, nil, nil, 1)
	if got != taxonomy.TestTypeUnknown {
		t.Errorf("ClassifyScope with no frameworks = %q, want %q", got, taxonomy.TestTypeUnknown)
	}
}

func TestClassifyScope_UIFrameworkWins(t *testing.T) {
	a := newTestAnalyzer(t, &codemodel.Project{Name: "shop"})
	root := codemodel.MethodRef{Class: "com.shop.CheckoutUITest", Signature: "flows()"}
	junit5, _ := a.tables.Framework("junit5")
	selenium, ok := a.tables.Framework("selenium")
	if !ok {
		t.Fatal("selenium framework missing from defaults")
	}

	// UI outranks any focal-class cardinality.
	got := a.ClassifyScope(root, nil, []signatures.Framework{junit5, selenium}, 3)
	if got != taxonomy.TestTypeUI {
		t.Errorf("ClassifyScope = %q, want %q", got, taxonomy.TestTypeUI)
	}
}

func TestClassifyScope_APIFrameworkWins(t *testing.T) {
	a := newTestAnalyzer(t, &codemodel.Project{Name: "shop"})
	root := codemodel.MethodRef{Class: "com.shop.OrdersApiTest", Signature: "fetches()"}
	junit5, _ := a.tables.Framework("junit5")
	restassured, ok := a.tables.Framework("restassured")
	if !ok {
		t.Fatal("restassured framework missing from defaults")
	}

	got := a.ClassifyScope(root, nil, []signatures.Framework{junit5, restassured}, 0)
	if got != taxonomy.TestTypeAPI {
		t.Errorf("ClassifyScope = %q, want %q", got, taxonomy.TestTypeAPI)
	}
}

func TestClassifyScope_UIOutranksAPI(t *testing.T) {
	a := newTestAnalyzer(t, &codemodel.Project{Name: "shop"})
	root := codemodel.MethodRef{Class: "com.shop.E2ETest", Signature: "clicksThrough()"}
	selenium, _ := a.tables.Framework("selenium")
	restassured, _ := a.tables.Framework("restassured")

	got := a.ClassifyScope(root, nil, []signatures.Framework{restassured, selenium}, 1)
	if got != taxonomy.TestTypeUI {
		t.Errorf("ClassifyScope = %q, want %q", got, taxonomy.TestTypeUI)
	}
}

func TestClassifyScope_CallSiteUIEvidence(t *testing.T) {
	// A Selenium call site in the method body is a UI signal even
	// when class-level evidence only names a unit framework.
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			junit5TestClass("com.shop.LoginTest",
				codemodel.Method{
					Signature:   "logsIn()",
					Annotations: []string{"@Test"},
					CallSites: []codemodel.CallSite{
						{Method: "findElement", Signature: "findElement(By)", CalleeClass: "org.openqa.selenium.WebDriver", Position: 0},
					},
				},
			),
		},
	}
	a := newTestAnalyzer(t, p)
	root := codemodel.MethodRef{Class: "com.shop.LoginTest", Signature: "logsIn()"}
	junit5, _ := a.tables.Framework("junit5")

	got := a.ClassifyScope(root, nil, []signatures.Framework{junit5}, 1)
	if got != taxonomy.TestTypeUI {
		t.Errorf("ClassifyScope = %q, want %q", got, taxonomy.TestTypeUI)
	}
}

func TestClassifyScope_CallSiteAPIEvidenceInHelper(t *testing.T) {
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			junit5TestClass("com.shop.OrdersApiTest",
				codemodel.Method{
					Signature:   "fetches()",
					Annotations: []string{"@Test"},
					CallSites: []codemodel.CallSite{
						{Method: "fetchOrders", Signature: "fetchOrders()", CalleeClass: "com.shop.OrdersApiTest", Position: 0},
					},
				},
				codemodel.Method{
					Signature: "fetchOrders()",
					CallSites: []codemodel.CallSite{
						{Method: "get", Signature: "get(String)", CalleeClass: "io.restassured.RestAssured", Position: 0},
					},
				},
			),
		},
	}
	a := newTestAnalyzer(t, p)
	root := codemodel.MethodRef{Class: "com.shop.OrdersApiTest", Signature: "fetches()"}
	helpers := []codemodel.MethodRef{{Class: "com.shop.OrdersApiTest", Signature: "fetchOrders()"}}
	junit5, _ := a.tables.Framework("junit5")

	got := a.ClassifyScope(root, helpers, []signatures.Framework{junit5}, 2)
	if got != taxonomy.TestTypeAPI {
		t.Errorf("ClassifyScope = %q, want %q", got, taxonomy.TestTypeAPI)
	}
}

func TestClassifyScope_PrefixBoundaryRespected(t *testing.T) {
	// org.openqa.seleniumish is not a Selenium package.
	p := &codemodel.Project{
		Name: "shop",
		Classes: []codemodel.Class{
			junit5TestClass("com.shop.CartTest",
				codemodel.Method{
					Signature:   "runs()",
					Annotations: []string{"@Test"},
					CallSites: []codemodel.CallSite{
						{Method: "go", Signature: "go()", CalleeClass: "org.openqa.seleniumish.Driver", Position: 0},
					},
				},
			),
		},
	}
	a := newTestAnalyzer(t, p)
	root := codemodel.MethodRef{Class: "com.shop.CartTest", Signature: "runs()"}
	junit5, _ := a.tables.Framework("junit5")

	got := a.ClassifyScope(root, nil, []signatures.Framework{junit5}, 1)
	if got != taxonomy.TestTypeUnit {
		t.Errorf("ClassifyScope = %q, want %q", got, taxonomy.TestTypeUnit)
	}
}
