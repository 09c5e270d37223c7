// Package taxonomy defines the test characterization type system,
// core result structures, and stable ID generation for testscope
// analysis output.
package taxonomy

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// TestType is the final scope label assigned to a test method.
type TestType string

// Test type constants, in classifier precedence order (UI and API
// framework signals outrank focal-class cardinality).
const (
	TestTypeUI          TestType = "ui"
	TestTypeAPI         TestType = "api"
	TestTypeLibrary     TestType = "library"
	TestTypeUnit        TestType = "unit"
	TestTypeIntegration TestType = "integration"
	TestTypeUnknown     TestType = "unknown"
)

// AssertionCategory classifies what an assertion checks.
type AssertionCategory string

// Assertion category constants. Unclassified is the explicit
// fallback for assertion signatures outside the taxonomy; such
// assertions are kept, never dropped.
const (
	CategoryTruthiness       AssertionCategory = "Truthiness"
	CategoryEquality         AssertionCategory = "Equality"
	CategoryIdentity         AssertionCategory = "Identity"
	CategoryNullness         AssertionCategory = "Nullness"
	CategoryNumericTolerance AssertionCategory = "Numeric-Tolerance"
	CategoryThrowable        AssertionCategory = "Throwable"
	CategoryCollection       AssertionCategory = "Collection"
	CategoryString           AssertionCategory = "String"
	CategoryComparison       AssertionCategory = "Comparison"
	CategoryUnclassified     AssertionCategory = "Unclassified"
)

// EntryKind distinguishes the entries of a call/assertion sequence.
type EntryKind string

// Entry kind constants. Mock-setup entries are excluded from
// assertion and regular-call counts.
const (
	KindAssertion   EntryKind = "assertion"
	KindRegularCall EntryKind = "regular-call"
	KindMockSetup   EntryKind = "mock-setup"
)

// ExecutionOrder is the declared execution phase of a fixture.
type ExecutionOrder string

// Execution order constants.
const (
	BeforeClass    ExecutionOrder = "before_class"
	BeforeEachTest ExecutionOrder = "before_each_test"
	AfterEachTest  ExecutionOrder = "after_each_test"
	AfterClass     ExecutionOrder = "after_class"
	OrderUnknown   ExecutionOrder = "unknown"
)

// FixtureRole distinguishes setup from teardown fixtures.
type FixtureRole string

// Fixture role constants.
const (
	RoleSetup    FixtureRole = "setup"
	RoleTeardown FixtureRole = "teardown"
)

// InputFormat is the detected format of a structured test input
// literal. Undetermined is the explicit fallback, not an error.
type InputFormat string

// Input format constants.
const (
	FormatJSON         InputFormat = "json"
	FormatXML          InputFormat = "xml"
	FormatHTML         InputFormat = "html"
	FormatYAML         InputFormat = "yaml"
	FormatSQL          InputFormat = "sql"
	FormatCSV          InputFormat = "csv"
	FormatUndetermined InputFormat = "undetermined"
)

// FocalClass is an application class considered under test, with its
// invocation-reference frequency. All classes tied at the maximum
// frequency are retained; ties are legitimate and drive integration
// classification.
type FocalClass struct {
	// Name is the qualified class name.
	Name string `json:"name"`

	// Invocations is the invocation-reference count across the test
	// method and its reachable helpers.
	Invocations int `json:"invocations"`
}

// CallAssertionEntry is one element of the ordered call/assertion
// sequence of a test method, with helper bodies inlined at their
// call sites.
type CallAssertionEntry struct {
	// Position is the entry's ordinal in the inlined sequence.
	Position int `json:"position"`

	// Kind is assertion, regular-call, or mock-setup.
	Kind EntryKind `json:"kind"`

	// Category is set for assertion entries only.
	Category AssertionCategory `json:"category,omitempty"`

	// Callee is the invoked method, "Class#signature" when resolved
	// or the bare signature otherwise.
	Callee string `json:"callee"`

	// Wrapped is true when the entry originates from a reachable
	// helper rather than the test method body itself.
	Wrapped bool `json:"wrapped"`
}

// CleanupCall is a resource-cleanup invocation found in a teardown
// fixture.
type CleanupCall struct {
	// Method is the cleanup method name (close, shutdown, ...).
	Method string `json:"method"`

	// ResourceType is the static type the cleanup is invoked on.
	ResourceType string `json:"resource_type,omitempty"`

	// MatchesSetup is true when a resource of the same type is
	// instantiated in a corresponding setup fixture. Unmatched
	// cleanups are recorded, not treated as errors.
	MatchesSetup bool `json:"matches_setup"`
}

// FixtureInfo describes one setup or teardown method of a test class.
type FixtureInfo struct {
	// Class is the declaring class (may be a superclass of the test
	// class).
	Class string `json:"class"`

	// Signature is the fixture method signature.
	Signature string `json:"signature"`

	// Role is setup or teardown.
	Role FixtureRole `json:"role"`

	// Order is the declared execution phase.
	Order ExecutionOrder `json:"order"`

	// Framework is the testing framework that declares the fixture
	// semantics (junit4, junit5, testng, ...).
	Framework string `json:"framework,omitempty"`

	// CleanupCalls lists detected resource cleanups (teardown only).
	CleanupCalls []CleanupCall `json:"cleanup_calls,omitempty"`
}

// MockInfo describes one mocked type detected in a test method or
// class. A class may use several mocking frameworks at once; each is
// reported independently.
type MockInfo struct {
	// Framework is the mocking framework name (mockito, easymock, ...).
	Framework string `json:"framework"`

	// MockedType is the qualified (or simple, when unresolvable)
	// type being mocked.
	MockedType string `json:"mocked_type"`

	// StubCalls counts stub-configuration calls for this mock.
	StubCalls int `json:"stub_calls"`

	// VerifyCalls counts verification calls for this mock.
	VerifyCalls int `json:"verify_calls"`
}

// TestInput is a string literal from a test method (or reachable
// helper) with its detected structured format.
type TestInput struct {
	// Line is the source line of the literal.
	Line int `json:"line,omitempty"`

	// Format is the detected format, undetermined when no heuristic
	// matched.
	Format InputFormat `json:"format"`

	// Preview is the literal's leading text, truncated for reports.
	Preview string `json:"preview,omitempty"`
}

// TestMethodAnalysis is the complete characterization of one test
// method. Write-once: constructed by the pipeline and never mutated
// afterwards.
type TestMethodAnalysis struct {
	// ID is a stable identifier for diffing across runs.
	ID string `json:"id"`

	// Class is the qualified declaring test class.
	Class string `json:"class"`

	// Signature is the test method signature.
	Signature string `json:"signature"`

	// TestType is the scope label from the classifier.
	TestType TestType `json:"test_type"`

	// FocalClasses lists the classes under test, highest invocation
	// frequency first.
	FocalClasses []FocalClass `json:"focal_classes"`

	// HelperCount is the size of the method's reachability set.
	HelperCount int `json:"helper_count"`

	// NCLOC is the non-comment, non-blank line count of the body.
	NCLOC int `json:"ncloc"`

	// NCLOCWithHelpers sums NCLOC over the method and its helpers.
	NCLOCWithHelpers int `json:"ncloc_with_helpers"`

	// Cyclomatic is 1 + decision points in the method body.
	Cyclomatic int `json:"cyclomatic_complexity"`

	// CyclomaticWithHelpers sums complexity over the method and its
	// reachability set, each helper counted exactly once.
	CyclomaticWithHelpers int `json:"cyclomatic_complexity_with_helpers"`

	// Sequence is the ordered call/assertion sequence.
	Sequence []CallAssertionEntry `json:"call_assertion_sequence"`

	// Fixtures lists the class fixtures that apply to this method,
	// as "Class#signature" references.
	Fixtures []string `json:"fixtures,omitempty"`

	// Mocks lists detected mocks.
	Mocks []MockInfo `json:"mocks,omitempty"`

	// Inputs lists structured literal inputs.
	Inputs []TestInput `json:"inputs,omitempty"`
}

// AssertionCount returns the number of assertion entries in the
// method's sequence.
func (a TestMethodAnalysis) AssertionCount() int {
	n := 0
	for _, e := range a.Sequence {
		if e.Kind == KindAssertion {
			n++
		}
	}
	return n
}

// TestClassAnalysis aggregates the analyses of one test class.
type TestClassAnalysis struct {
	// Class is the qualified test class name.
	Class string `json:"class"`

	// Frameworks lists the testing frameworks detected for the
	// class, from imports and annotations.
	Frameworks []string `json:"frameworks"`

	// IsBDD is true when any detected framework is a BDD framework.
	IsBDD bool `json:"is_bdd"`

	// Setups and Teardowns are the class fixtures in declaration
	// order.
	Setups    []FixtureInfo `json:"setups,omitempty"`
	Teardowns []FixtureInfo `json:"teardowns,omitempty"`

	// Methods holds the per-method analyses in declaration order.
	Methods []TestMethodAnalysis `json:"test_methods"`

	// Skipped lists method signatures excluded after an analysis
	// failure at the method boundary.
	Skipped []string `json:"skipped_methods,omitempty"`
}

// Totals holds corpus-level counters for a project.
type Totals struct {
	TestClasses   int                    `json:"test_classes"`
	TestMethods   int                    `json:"test_methods"`
	Skipped       int                    `json:"skipped_methods"`
	Assertions    int                    `json:"assertions"`
	Mocks         int                    `json:"mocks"`
	TestTypes     map[TestType]int       `json:"test_types"`
	Frameworks    map[string]int         `json:"frameworks"`
	FixtureOrders map[ExecutionOrder]int `json:"fixture_orders"`
	InputFormats  map[InputFormat]int    `json:"input_formats"`
}

// ComputeTotals folds per-class analyses into corpus counters.
func ComputeTotals(classes []TestClassAnalysis) Totals {
	t := Totals{
		TestTypes:     make(map[TestType]int),
		Frameworks:    make(map[string]int),
		FixtureOrders: make(map[ExecutionOrder]int),
		InputFormats:  make(map[InputFormat]int),
	}
	for _, tca := range classes {
		t.TestClasses++
		t.TestMethods += len(tca.Methods)
		t.Skipped += len(tca.Skipped)
		for _, fw := range tca.Frameworks {
			t.Frameworks[fw]++
		}
		for _, f := range tca.Setups {
			t.FixtureOrders[f.Order]++
		}
		for _, f := range tca.Teardowns {
			t.FixtureOrders[f.Order]++
		}
		for _, tma := range tca.Methods {
			t.TestTypes[tma.TestType]++
			t.Assertions += tma.AssertionCount()
			t.Mocks += len(tma.Mocks)
			for _, in := range tma.Inputs {
				t.InputFormats[in.Format]++
			}
		}
	}
	return t
}

// Metadata holds analysis run metadata.
type Metadata struct {
	Version   string        `json:"testscope_version"`
	GoVersion string        `json:"go_version"`
	Timestamp time.Time     `json:"-"`
	Duration  time.Duration `json:"-"`
	Warnings  []string      `json:"warnings"`
}

// MarshalJSON customizes JSON encoding to use duration_ms and an
// ISO 8601 timestamp.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type Alias Metadata
	ts := ""
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(&struct {
		Alias
		DurationMS int64  `json:"duration_ms"`
		Timestamp  string `json:"timestamp,omitempty"`
	}{
		Alias:      Alias(m),
		DurationMS: m.Duration.Milliseconds(),
		Timestamp:  ts,
	})
}

// ProjectAnalysis is the complete output for one project: a tree of
// class analyses plus corpus counters. The output tree is acyclic
// and serializable even though the analyzed call graphs may be
// cyclic.
type ProjectAnalysis struct {
	// Project is the project or dataset identifier.
	Project string `json:"project"`

	// Classes holds the per-class analyses in insertion order.
	// Order affects reporting readability only, not correctness.
	Classes []TestClassAnalysis `json:"test_classes"`

	// Totals holds the corpus counters.
	Totals Totals `json:"totals"`

	// Metadata contains run information.
	Metadata Metadata `json:"metadata"`
}

// GenerateID produces a stable, deterministic ID for a test method
// based on its identity. The ID is a sha256 hash truncated to 8 hex
// characters, prefixed with "tm-".
func GenerateID(project, class, signature string) string {
	input := fmt.Sprintf("%s:%s:%s", project, class, signature)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("tm-%x", hash[:4])
}
