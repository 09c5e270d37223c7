// Package codemodel defines the structural code model testscope
// consumes: classes, methods, call sites, variable declarations, and
// literals extracted from Java sources by an external parser. The
// package provides read-only indexed access; nothing here mutates the
// model after construction.
package codemodel

import (
	"fmt"
	"strings"
)

// MethodRef identifies a method by its owning class and signature.
// It is comparable and used as a graph node and map key.
type MethodRef struct {
	Class     string `json:"class"`
	Signature string `json:"signature"`
}

// String formats the ref as "com.example.Foo#bar(int)".
func (r MethodRef) String() string {
	return fmt.Sprintf("%s#%s", r.Class, r.Signature)
}

// CallSite is a single invocation inside a method body, in source
// order. CalleeClass is empty when the callee could not be resolved
// by the extractor.
type CallSite struct {
	// Method is the simple name of the invoked method.
	Method string `json:"method"`

	// Signature is the callee signature, e.g. "save(Order)".
	Signature string `json:"signature"`

	// CalleeClass is the qualified declaring class of the callee,
	// or "" for an unresolved call target.
	CalleeClass string `json:"callee_class,omitempty"`

	// ReceiverType is the static type of the call receiver, "" for
	// static calls and unqualified same-class calls.
	ReceiverType string `json:"receiver_type,omitempty"`

	// ReceiverName is the variable the call is made on, "" when the
	// receiver is implicit or an expression.
	ReceiverName string `json:"receiver_name,omitempty"`

	// ArgNames holds the variable names passed as arguments.
	// Literal or expression arguments appear as "".
	ArgNames []string `json:"arg_names,omitempty"`

	// ArgTypes holds the static types of the arguments, parallel to
	// ArgNames where known.
	ArgTypes []string `json:"arg_types,omitempty"`

	// IsConstructor marks "new X(...)" invocations.
	IsConstructor bool `json:"is_constructor,omitempty"`

	// Position is the ordinal of this call site within the method
	// body, counting from 0 in source order.
	Position int `json:"position"`

	// Line is the 1-based source line of the invocation.
	Line int `json:"line,omitempty"`
}

// Ref returns the MethodRef of the callee, normalizing constructor
// signatures to the "<init>(...)" form. The zero value is returned
// for unresolved callees.
func (c CallSite) Ref() MethodRef {
	if c.CalleeClass == "" {
		return MethodRef{}
	}
	sig := c.Signature
	simple := SimpleName(c.CalleeClass)
	if strings.HasPrefix(sig, simple+"(") {
		sig = "<init>" + sig[len(simple):]
	}
	return MethodRef{Class: c.CalleeClass, Signature: sig}
}

// Variable is a local variable declaration inside a method body.
type Variable struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Line int    `json:"line,omitempty"`
}

// Literal is a string/text literal appearing in a method body.
type Literal struct {
	Value string `json:"value"`
	Line  int    `json:"line,omitempty"`
}

// Field is a member field declaration of a class.
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Annotations []string `json:"annotations,omitempty"`
	Line        int      `json:"line,omitempty"`
}

// Method is a single method declaration with its body structure.
type Method struct {
	Signature     string     `json:"signature"`
	Annotations   []string   `json:"annotations,omitempty"`
	Modifiers     []string   `json:"modifiers,omitempty"`
	ReturnType    string     `json:"return_type,omitempty"`
	IsConstructor bool       `json:"is_constructor,omitempty"`
	Code          string     `json:"code,omitempty"`
	Variables     []Variable `json:"variables,omitempty"`
	CallSites     []CallSite `json:"call_sites,omitempty"`
	Literals      []Literal  `json:"literals,omitempty"`
}

// Class is a single type declaration (class, interface, or enum).
type Class struct {
	Name        string   `json:"name"`
	Package     string   `json:"package,omitempty"`
	IsInterface bool     `json:"is_interface,omitempty"`
	Modifiers   []string `json:"modifiers,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
	Imports     []string `json:"imports,omitempty"`
	Extends     []string `json:"extends,omitempty"`
	Implements  []string `json:"implements,omitempty"`
	Fields      []Field  `json:"fields,omitempty"`
	Methods     []Method `json:"methods,omitempty"`
}

// Project is the root of a code model document.
type Project struct {
	Name    string  `json:"project"`
	Classes []Class `json:"classes"`
}

// Model provides indexed, read-only access to a Project. Lookups are
// O(1); declaration order is preserved for iteration.
type Model struct {
	project *Project
	classes map[string]*Class
	methods map[MethodRef]*Method
}

// NewModel indexes a project. The project must not be mutated after
// this call.
func NewModel(p *Project) *Model {
	m := &Model{
		project: p,
		classes: make(map[string]*Class, len(p.Classes)),
		methods: make(map[MethodRef]*Method),
	}
	for i := range p.Classes {
		cls := &p.Classes[i]
		m.classes[cls.Name] = cls
		for j := range cls.Methods {
			ref := MethodRef{Class: cls.Name, Signature: cls.Methods[j].Signature}
			m.methods[ref] = &cls.Methods[j]
		}
	}
	return m
}

// ProjectName returns the project identifier from the model document.
func (m *Model) ProjectName() string {
	return m.project.Name
}

// Classes returns all classes in declaration order.
func (m *Model) Classes() []Class {
	return m.project.Classes
}

// Class looks up a class by qualified name.
func (m *Model) Class(name string) (*Class, bool) {
	c, ok := m.classes[name]
	return c, ok
}

// Method looks up a method body by ref. Constructor refs may use
// either the "<init>(...)" or "SimpleName(...)" signature form.
func (m *Model) Method(ref MethodRef) (*Method, bool) {
	if mt, ok := m.methods[ref]; ok {
		return mt, true
	}
	// Constructors may be recorded under the simple-name signature.
	if strings.HasPrefix(ref.Signature, "<init>(") {
		alt := MethodRef{
			Class:     ref.Class,
			Signature: SimpleName(ref.Class) + ref.Signature[len("<init>"):],
		}
		if mt, ok := m.methods[alt]; ok {
			return mt, true
		}
	}
	return nil, false
}

// SuperClasses returns the transitive superclass chain of a class,
// nearest first, restricted to classes present in the model.
func (m *Model) SuperClasses(name string) []string {
	var chain []string
	seen := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		cls, ok := m.classes[queue[0]]
		queue = queue[1:]
		if !ok {
			continue
		}
		for _, sup := range cls.Extends {
			if seen[sup] {
				continue
			}
			seen[sup] = true
			chain = append(chain, sup)
			queue = append(queue, sup)
		}
	}
	return chain
}

// SimpleName returns the unqualified class name.
func SimpleName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i != -1 {
		return qualified[i+1:]
	}
	return qualified
}

// PackageOf returns the package portion of a qualified class name,
// or "" for a default-package class.
func PackageOf(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i != -1 {
		return qualified[:i]
	}
	return ""
}
