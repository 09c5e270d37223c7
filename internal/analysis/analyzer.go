// Package analysis is the testscope engine: it characterizes every
// test method of a code model (focal classes, scope, call/assertion
// sequence, fixtures, mocks, inputs, complexity) and aggregates the
// results method -> class -> project.
package analysis

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/config"
	"github.com/unbound-force/testscope/internal/reach"
	"github.com/unbound-force/testscope/internal/signatures"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// Analyzer runs the characterization pipeline over one code model.
// All inputs (model, tables, config) are immutable, so an Analyzer
// is safe for concurrent use.
type Analyzer struct {
	model    *codemodel.Model
	tables   *signatures.Tables
	cfg      *config.Config
	resolver *reach.Resolver
	logger   *charmlog.Logger
	version  string

	complexityMu    sync.Mutex
	complexityCache map[codemodel.MethodRef]methodComplexity
}

// New builds an Analyzer. logger may be nil to suppress warnings.
func New(model *codemodel.Model, tables *signatures.Tables, cfg *config.Config, logger *charmlog.Logger, version string) *Analyzer {
	a := &Analyzer{
		model:           model,
		tables:          tables,
		cfg:             cfg,
		logger:          logger,
		version:         version,
		complexityCache: make(map[codemodel.MethodRef]methodComplexity),
	}
	a.resolver = reach.NewResolver(model, reach.Options{
		MaxDepth:    cfg.Reachability.MaxDepth,
		MaxVisited:  cfg.Reachability.MaxVisited,
		OnlyHelpers: true,
	}, a.isApplicationClass)
	return a
}

// isApplicationClass decides the application-code boundary. With no
// allow list configured, every class present in the model qualifies;
// deny-list and framework-table packages never do.
func (a *Analyzer) isApplicationClass(class string) bool {
	if class == "" {
		return false
	}
	for _, pkg := range a.cfg.Analysis.ExcludePackages {
		if strings.HasPrefix(class, pkg) {
			return false
		}
	}
	if a.tables.IsFrameworkClass(class) {
		return false
	}
	if len(a.cfg.Analysis.AppPackages) > 0 {
		for _, pkg := range a.cfg.Analysis.AppPackages {
			if strings.HasPrefix(class, pkg) {
				return true
			}
		}
		return false
	}
	_, inModel := a.model.Class(class)
	return inModel
}

// AnalyzeProject characterizes every test class in the model,
// processing classes concurrently. Result order follows model
// declaration order regardless of completion order.
func (a *Analyzer) AnalyzeProject(ctx context.Context) (*taxonomy.ProjectAnalysis, error) {
	start := time.Now()

	var testClasses []*codemodel.Class
	for _, cls := range a.model.Classes() {
		if c, ok := a.model.Class(cls.Name); ok && a.isTestClass(c) {
			testClasses = append(testClasses, c)
		}
	}

	results := make([]taxonomy.TestClassAnalysis, len(testClasses))

	workers := a.cfg.Analysis.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cls := range testClasses {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.AnalyzeClass(cls)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing project %q: %w", a.model.ProjectName(), err)
	}

	pa := &taxonomy.ProjectAnalysis{
		Project: a.model.ProjectName(),
		Classes: results,
		Totals:  taxonomy.ComputeTotals(results),
		Metadata: taxonomy.Metadata{
			Version:   a.version,
			GoVersion: runtime.Version(),
			Timestamp: start,
			Duration:  time.Since(start),
			Warnings:  []string{},
		},
	}
	return pa, nil
}

// AnalyzeClass characterizes one test class: frameworks, fixtures,
// and every test method. Per-method failures are recovered at the
// method boundary, logged, and recorded as skipped; they never abort
// the remaining corpus.
func (a *Analyzer) AnalyzeClass(cls *codemodel.Class) taxonomy.TestClassAnalysis {
	frameworks := a.classFrameworks(cls)

	tca := taxonomy.TestClassAnalysis{
		Class:      cls.Name,
		Frameworks: frameworkNames(frameworks),
		IsBDD:      isBDD(frameworks),
	}
	tca.Setups, tca.Teardowns = a.Fixtures(cls, frameworks)

	fixtureRefs := make([]string, 0, len(tca.Setups)+len(tca.Teardowns))
	for _, f := range tca.Setups {
		fixtureRefs = append(fixtureRefs, f.Class+"#"+f.Signature)
	}
	for _, f := range tca.Teardowns {
		fixtureRefs = append(fixtureRefs, f.Class+"#"+f.Signature)
	}

	for i := range cls.Methods {
		method := &cls.Methods[i]
		if !a.isTestMethod(cls, method, frameworks) {
			continue
		}
		tma, err := a.analyzeMethodSafe(cls, method, frameworks, fixtureRefs)
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("skipping test method",
					"class", cls.Name, "method", method.Signature, "err", err)
			}
			tca.Skipped = append(tca.Skipped, method.Signature)
			continue
		}
		tca.Methods = append(tca.Methods, tma)
	}
	if tca.Methods == nil {
		tca.Methods = []taxonomy.TestMethodAnalysis{}
	}

	return tca
}

// analyzeMethodSafe wraps AnalyzeMethod with the method-boundary
// recover mandated by the batch contract.
func (a *Analyzer) analyzeMethodSafe(cls *codemodel.Class, method *codemodel.Method, frameworks []signatures.Framework, fixtureRefs []string) (tma taxonomy.TestMethodAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panic: %v", r)
		}
	}()
	tma = a.AnalyzeMethod(cls, method, frameworks, fixtureRefs)
	return tma, nil
}

// analyzeMethodHook, when set, runs before a method is analyzed.
// Tests use it to inject method-level failures.
var analyzeMethodHook func(root codemodel.MethodRef)

// AnalyzeMethod characterizes a single test method.
func (a *Analyzer) AnalyzeMethod(cls *codemodel.Class, method *codemodel.Method, frameworks []signatures.Framework, fixtureRefs []string) taxonomy.TestMethodAnalysis {
	root := codemodel.MethodRef{Class: cls.Name, Signature: method.Signature}
	if analyzeMethodHook != nil {
		analyzeMethodHook(root)
	}
	helpers := a.resolver.Reachable(root)

	focal := a.FocalClasses(root, helpers)
	sequence := a.Sequence(root)
	bare, withHelpers := a.Complexity(root, helpers)

	tma := taxonomy.TestMethodAnalysis{
		ID:                    taxonomy.GenerateID(a.model.ProjectName(), cls.Name, method.Signature),
		Class:                 cls.Name,
		Signature:             method.Signature,
		TestType:              a.ClassifyScope(root, helpers, frameworks, len(focal)),
		FocalClasses:          focal,
		HelperCount:           len(helpers),
		NCLOC:                 bare.NCLOC,
		NCLOCWithHelpers:      withHelpers.NCLOC,
		Cyclomatic:            bare.Cyclomatic,
		CyclomaticWithHelpers: withHelpers.Cyclomatic,
		Sequence:              sequence,
		Fixtures:              fixtureRefs,
		Mocks:                 a.Mocks(cls, root, helpers),
		Inputs:                a.Inputs(root, helpers),
	}
	return tma
}

// classFrameworks detects the testing frameworks of a class from its
// imports plus class- and method-level annotations.
func (a *Analyzer) classFrameworks(cls *codemodel.Class) []signatures.Framework {
	anns := append([]string{}, cls.Annotations...)
	for _, m := range cls.Methods {
		anns = append(anns, m.Annotations...)
	}
	return a.tables.FrameworksFor(cls.Imports, anns)
}

// isTestClass reports whether a class contains detectable test
// methods. Classes without framework evidence still qualify when
// they follow the Test-suffix naming convention, so incomplete
// corpus entries degrade to unknown-typed records instead of
// disappearing.
func (a *Analyzer) isTestClass(cls *codemodel.Class) bool {
	if cls.IsInterface {
		return false
	}
	frameworks := a.classFrameworks(cls)
	for i := range cls.Methods {
		if a.isTestMethod(cls, &cls.Methods[i], frameworks) {
			return true
		}
	}
	return false
}

// isTestMethod reports whether a method is a test entry point for
// any of the class's frameworks, or by naming convention when the
// class carries no framework evidence.
func (a *Analyzer) isTestMethod(cls *codemodel.Class, method *codemodel.Method, frameworks []signatures.Framework) bool {
	if method.IsConstructor {
		return false
	}
	for _, fw := range frameworks {
		for _, ann := range method.Annotations {
			if fw.HasTestAnnotation(ann) {
				return true
			}
		}
		for _, prefix := range fw.TestNamePrefixes {
			if strings.HasPrefix(method.Signature, prefix) {
				return true
			}
		}
	}
	if len(frameworks) == 0 && hasTestNameSuffix(cls.Name) {
		if strings.HasPrefix(method.Signature, "test") {
			return true
		}
		for _, ann := range method.Annotations {
			if simpleAnnotation(ann) == "Test" {
				return true
			}
		}
	}
	return false
}

func hasTestNameSuffix(class string) bool {
	simple := codemodel.SimpleName(class)
	return strings.HasSuffix(simple, "Test") ||
		strings.HasSuffix(simple, "Tests") ||
		strings.HasSuffix(simple, "TestCase") ||
		strings.HasPrefix(simple, "Test")
}

func simpleAnnotation(ann string) string {
	ann = strings.TrimPrefix(ann, "@")
	if i := strings.IndexByte(ann, '('); i != -1 {
		ann = ann[:i]
	}
	if i := strings.LastIndex(ann, "."); i != -1 {
		ann = ann[i+1:]
	}
	return ann
}

func frameworkNames(frameworks []signatures.Framework) []string {
	names := make([]string, 0, len(frameworks))
	for _, f := range frameworks {
		names = append(names, f.Name)
	}
	return names
}

func isBDD(frameworks []signatures.Framework) bool {
	for _, f := range frameworks {
		if f.Kind == signatures.KindBDD {
			return true
		}
	}
	return false
}
