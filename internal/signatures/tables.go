// Package signatures holds the static framework, assertion, mocking,
// fixture, and cleanup signature tables. Tables are plain enumerated
// data loaded once at startup and never mutated, so they are safe to
// share across concurrent workers.
package signatures

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/testscope/internal/taxonomy"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// FrameworkKind groups testing frameworks by the scope signal they
// carry.
type FrameworkKind string

// Framework kind constants.
const (
	KindUnit FrameworkKind = "unit"
	KindBDD  FrameworkKind = "bdd"
	KindUI   FrameworkKind = "ui"
	KindAPI  FrameworkKind = "api"
)

// FixtureAnnotation maps a framework annotation to its declared
// execution phase.
type FixtureAnnotation struct {
	Annotation string `yaml:"annotation"`
	Order      string `yaml:"order"`
}

// Framework is one testing framework's signature entry.
type Framework struct {
	Name              string              `yaml:"name"`
	Kind              FrameworkKind       `yaml:"kind"`
	Packages          []string            `yaml:"packages"`
	TestAnnotations   []string            `yaml:"test_annotations"`
	TestNamePrefixes  []string            `yaml:"test_name_prefixes"`
	Setup             []FixtureAnnotation `yaml:"setup"`
	Teardown          []FixtureAnnotation `yaml:"teardown"`
	SetupNames        []string            `yaml:"setup_names"`
	TeardownNames     []string            `yaml:"teardown_names"`
	SetupNameOrder    string              `yaml:"setup_name_order"`
	TeardownNameOrder string              `yaml:"teardown_name_order"`
}

// HasTestAnnotation reports whether ann marks a test method in this
// framework.
func (f Framework) HasTestAnnotation(ann string) bool {
	return matchAnnotation(f.TestAnnotations, ann)
}

// MockFramework is one mocking framework's signature entry.
type MockFramework struct {
	Name        string   `yaml:"name"`
	Packages    []string `yaml:"packages"`
	Annotations []string `yaml:"annotations"`
	Creation    []string `yaml:"creation"`
	Stub        []string `yaml:"stub"`
	Verify      []string `yaml:"verify"`
}

// IsCreation reports whether method creates a mock in this framework.
func (m MockFramework) IsCreation(method string) bool {
	return containsString(m.Creation, method)
}

// IsStub reports whether method is a stub-configuration call.
func (m MockFramework) IsStub(method string) bool {
	return containsString(m.Stub, method)
}

// IsVerify reports whether method is a verification call.
func (m MockFramework) IsVerify(method string) bool {
	return containsString(m.Verify, method)
}

// HasAnnotation reports whether ann is one of the framework's mock
// annotations (@Mock, @Mocked, ...).
func (m MockFramework) HasAnnotation(ann string) bool {
	return matchAnnotation(m.Annotations, ann)
}

// rawTables mirrors the YAML document layout.
type rawTables struct {
	Frameworks []Framework     `yaml:"frameworks"`
	Assertions rawAssertions   `yaml:"assertions"`
	Mocking    []MockFramework `yaml:"mocking"`
	Cleanup    []string        `yaml:"cleanup_methods"`
}

type rawAssertions struct {
	Packages      []string            `yaml:"packages"`
	Categories    map[string][]string `yaml:"categories"`
	Uncategorized []string            `yaml:"uncategorized"`
}

// Tables is the immutable signature lookup set. Build one with
// Default or LoadFile; never mutate it afterwards.
type Tables struct {
	frameworks        []Framework
	mocks             []MockFramework
	assertionPackages []string
	categoryOf        map[string]taxonomy.AssertionCategory
	assertionNames    map[string]bool
	cleanup           map[string]bool
	frameworkPrefixes []string
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the built-in tables, parsed once per process.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := parse(defaultsYAML)
		if err != nil {
			// The embedded defaults are part of the binary; a parse
			// failure is a build defect, not a runtime condition.
			panic(fmt.Sprintf("signatures: embedded defaults: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// LoadFile parses a signature table override file.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signature tables %q: %w", path, err)
	}
	t, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing signature tables %q: %w", path, err)
	}
	return t, nil
}

func parse(data []byte) (*Tables, error) {
	var raw rawTables
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	t := &Tables{
		frameworks:        raw.Frameworks,
		mocks:             raw.Mocking,
		assertionPackages: raw.Assertions.Packages,
		categoryOf:        make(map[string]taxonomy.AssertionCategory),
		assertionNames:    make(map[string]bool),
		cleanup:           make(map[string]bool),
	}

	for cat, methods := range raw.Assertions.Categories {
		for _, m := range methods {
			t.categoryOf[m] = taxonomy.AssertionCategory(cat)
			t.assertionNames[m] = true
		}
	}
	for _, m := range raw.Assertions.Uncategorized {
		t.assertionNames[m] = true
	}
	for _, m := range raw.Cleanup {
		t.cleanup[m] = true
	}

	for _, f := range raw.Frameworks {
		t.frameworkPrefixes = append(t.frameworkPrefixes, f.Packages...)
	}
	t.frameworkPrefixes = append(t.frameworkPrefixes, raw.Assertions.Packages...)
	for _, m := range raw.Mocking {
		t.frameworkPrefixes = append(t.frameworkPrefixes, m.Packages...)
	}

	return t, nil
}

// Frameworks returns all known testing frameworks.
func (t *Tables) Frameworks() []Framework {
	return t.frameworks
}

// Framework looks up a testing framework by name.
func (t *Tables) Framework(name string) (Framework, bool) {
	for _, f := range t.frameworks {
		if f.Name == name {
			return f, true
		}
	}
	return Framework{}, false
}

// FrameworksFor resolves the testing frameworks evidenced by a
// class's imports and annotations. For each import the framework
// with the longest matching package prefix wins, so org.junit.jupiter
// imports resolve to junit5 rather than junit4.
func (t *Tables) FrameworksFor(imports, annotations []string) []Framework {
	matched := make(map[string]bool)
	var out []Framework

	add := func(f Framework) {
		if !matched[f.Name] {
			matched[f.Name] = true
			out = append(out, f)
		}
	}

	for _, imp := range imports {
		var best *Framework
		bestLen := 0
		for i := range t.frameworks {
			for _, pkg := range t.frameworks[i].Packages {
				if hasPackagePrefix(imp, pkg) && len(pkg) > bestLen {
					best = &t.frameworks[i]
					bestLen = len(pkg)
				}
			}
		}
		if best != nil {
			add(*best)
		}
	}

	for _, ann := range annotations {
		var hits []Framework
		for i := range t.frameworks {
			f := t.frameworks[i]
			if f.HasTestAnnotation(ann) ||
				orderForAnnotation(f.Setup, ann) != "" ||
				orderForAnnotation(f.Teardown, ann) != "" {
				hits = append(hits, f)
			}
		}
		// An unqualified annotation shared by several frameworks
		// (@Test matches junit4, junit5 and testng) is not evidence
		// for any one of them. Import evidence disambiguates; an
		// already-matched framework explains the annotation and the
		// others are not added.
		if len(hits) == 1 {
			add(hits[0])
		}
	}

	return out
}

// AssertionCategory classifies an assertion method name. The second
// return is false when the method is not an assertion signature at
// all. Assertion-shaped names absent from every category map to
// Unclassified rather than being dropped.
func (t *Tables) AssertionCategory(method string) (taxonomy.AssertionCategory, bool) {
	if cat, ok := t.categoryOf[method]; ok {
		return cat, true
	}
	if t.assertionNames[method] {
		return taxonomy.CategoryUnclassified, true
	}
	if strings.HasPrefix(method, "assert") && len(method) > len("assert") {
		return taxonomy.CategoryUnclassified, true
	}
	return "", false
}

// IsAssertion reports whether a call to class#method is an assertion,
// either by declaring class (assertion library) or by method
// signature.
func (t *Tables) IsAssertion(class, method string) bool {
	if _, ok := t.AssertionCategory(method); ok {
		return true
	}
	for _, pkg := range t.assertionPackages {
		if hasPackagePrefix(class, pkg) {
			return true
		}
	}
	return false
}

// IsFrameworkClass reports whether a qualified class belongs to any
// testing framework, assertion library, or mocking framework package.
// Such classes are never focal-class eligible.
func (t *Tables) IsFrameworkClass(class string) bool {
	if class == "" {
		return false
	}
	for _, pkg := range t.frameworkPrefixes {
		if hasPackagePrefix(class, pkg) {
			return true
		}
	}
	return false
}

// MockFrameworks returns all known mocking frameworks.
func (t *Tables) MockFrameworks() []MockFramework {
	return t.mocks
}

// MockFrameworksFor resolves the mocking frameworks evidenced by
// imports and annotations. Zero, one, or several frameworks may
// match; each is reported independently.
func (t *Tables) MockFrameworksFor(imports, annotations []string) []MockFramework {
	matched := make(map[string]bool)
	var out []MockFramework

	for _, m := range t.mocks {
		for _, imp := range imports {
			for _, pkg := range m.Packages {
				if hasPackagePrefix(imp, pkg) && !matched[m.Name] {
					matched[m.Name] = true
					out = append(out, m)
				}
			}
		}
		for _, ann := range annotations {
			if m.HasAnnotation(ann) && !matched[m.Name] {
				matched[m.Name] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// MockCall resolves a call to the mocking framework it belongs to,
// by declaring class package or by stub/verify/creation signature.
func (t *Tables) MockCall(class, method string) (MockFramework, bool) {
	for _, m := range t.mocks {
		for _, pkg := range m.Packages {
			if hasPackagePrefix(class, pkg) {
				return m, true
			}
		}
	}
	for _, m := range t.mocks {
		if m.IsCreation(method) || m.IsStub(method) || m.IsVerify(method) {
			return m, true
		}
	}
	return MockFramework{}, false
}

// IsCleanup reports whether a method name is a known resource
// cleanup signature.
func (t *Tables) IsCleanup(method string) bool {
	return t.cleanup[method]
}

// SetupOrder returns the execution phase a fixture annotation
// declares in the given framework, or OrderUnknown/false when the
// annotation is not a setup annotation.
func SetupOrder(f Framework, ann string) (taxonomy.ExecutionOrder, bool) {
	if o := orderForAnnotation(f.Setup, ann); o != "" {
		return taxonomy.ExecutionOrder(o), true
	}
	return taxonomy.OrderUnknown, false
}

// TeardownOrder is the teardown counterpart of SetupOrder.
func TeardownOrder(f Framework, ann string) (taxonomy.ExecutionOrder, bool) {
	if o := orderForAnnotation(f.Teardown, ann); o != "" {
		return taxonomy.ExecutionOrder(o), true
	}
	return taxonomy.OrderUnknown, false
}

func orderForAnnotation(fixtures []FixtureAnnotation, ann string) string {
	for _, fa := range fixtures {
		if annotationEqual(fa.Annotation, ann) {
			return fa.Order
		}
	}
	return ""
}

// matchAnnotation reports whether ann matches any table entry,
// comparing either the fully qualified form or the simple name.
func matchAnnotation(table []string, ann string) bool {
	for _, entry := range table {
		if annotationEqual(entry, ann) {
			return true
		}
	}
	return false
}

func annotationEqual(entry, ann string) bool {
	ann = strings.TrimPrefix(ann, "@")
	// Strip annotation arguments, e.g. @Test(expected = Foo.class).
	if i := strings.IndexByte(ann, '('); i != -1 {
		ann = ann[:i]
	}
	if entry == ann {
		return true
	}
	// Simple-name match when the model records unqualified
	// annotations.
	if i := strings.LastIndex(entry, "."); i != -1 && entry[i+1:] == ann {
		return true
	}
	return false
}

// hasPackagePrefix reports whether name equals pkg or sits below it
// in the package hierarchy.
func hasPackagePrefix(name, pkg string) bool {
	if !strings.HasPrefix(name, pkg) {
		return false
	}
	return len(name) == len(pkg) || name[len(pkg)] == '.'
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
