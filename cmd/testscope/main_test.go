package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unbound-force/testscope/internal/report"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// sampleModelJSON is a minimal code model with one JUnit 5 test class
// exercising one application class.
const sampleModelJSON = `{
  "project": "demo",
  "classes": [
    {
      "name": "com.demo.CalculatorTest",
      "package": "com.demo",
      "imports": ["org.junit.jupiter.api.Test", "org.junit.jupiter.api.Assertions"],
      "methods": [
        {
          "signature": "addsNumbers()",
          "annotations": ["@Test"],
          "code": "int sum = calc.add(1, 2);\nAssertions.assertEquals(3, sum);",
          "variables": [{"name": "sum", "type": "int", "line": 1}],
          "call_sites": [
            {
              "method": "add",
              "signature": "add(int,int)",
              "callee_class": "com.demo.Calculator",
              "receiver_type": "com.demo.Calculator",
              "receiver_name": "calc",
              "position": 0,
              "line": 1
            },
            {
              "method": "assertEquals",
              "signature": "assertEquals(int,int)",
              "callee_class": "org.junit.jupiter.api.Assertions",
              "arg_types": ["int", "int"],
              "position": 1,
              "line": 2
            }
          ]
        }
      ]
    },
    {
      "name": "com.demo.Calculator",
      "package": "com.demo",
      "methods": [
        {
          "signature": "add(int,int)",
          "return_type": "int",
          "code": "return a + b;"
        }
      ]
    }
  ]
}`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing model file: %v", err)
	}
	return path
}

func TestRunAnalyze_LogsToStderrWriter(t *testing.T) {
	var errBuf bytes.Buffer
	err := runAnalyze(context.Background(), analyzeParams{
		modelPath: writeModel(t, sampleModelJSON),
		format:    "json",
		stdout:    &bytes.Buffer{},
		stderr:    &errBuf,
	})
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}
	if !strings.Contains(errBuf.String(), "loading code model") {
		t.Errorf("expected progress logs on the stderr writer, got %q", errBuf.String())
	}
}

func TestRunAnalyze_InvalidFormat(t *testing.T) {
	err := runAnalyze(context.Background(), analyzeParams{
		modelPath: "ignored.json",
		format:    "xml",
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunAnalyze_HTMLNotImplemented(t *testing.T) {
	err := runAnalyze(context.Background(), analyzeParams{
		modelPath: "ignored.json",
		format:    "html",
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for html format")
	}
	if !strings.Contains(err.Error(), "not yet implemented") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunAnalyze_MissingModelFile(t *testing.T) {
	err := runAnalyze(context.Background(), analyzeParams{
		modelPath: filepath.Join(t.TempDir(), "nope.json"),
		format:    "json",
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for missing model file")
	}
}

func TestRunAnalyze_JSONOutput(t *testing.T) {
	path := writeModel(t, sampleModelJSON)

	var stdout bytes.Buffer
	err := runAnalyze(context.Background(), analyzeParams{
		modelPath: path,
		format:    "json",
		stdout:    &stdout,
		stderr:    &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}

	var rpt report.JSONReport
	if err := json.Unmarshal(stdout.Bytes(), &rpt); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput:\n%s", err, stdout.String())
	}

	if rpt.Project.Project != "demo" {
		t.Errorf("expected project 'demo', got %q", rpt.Project.Project)
	}
	if len(rpt.Project.Classes) != 1 {
		t.Fatalf("expected 1 test class, got %d", len(rpt.Project.Classes))
	}
	cls := rpt.Project.Classes[0]
	if cls.Class != "com.demo.CalculatorTest" {
		t.Errorf("expected test class com.demo.CalculatorTest, got %q", cls.Class)
	}
	if len(cls.Frameworks) != 1 || cls.Frameworks[0] != "junit5" {
		t.Errorf("expected frameworks [junit5], got %v", cls.Frameworks)
	}
	if len(cls.Methods) != 1 {
		t.Fatalf("expected 1 test method, got %d", len(cls.Methods))
	}

	m := cls.Methods[0]
	if m.TestType != taxonomy.TestTypeUnit {
		t.Errorf("expected unit test type, got %q", m.TestType)
	}
	if len(m.FocalClasses) != 1 || m.FocalClasses[0].Name != "com.demo.Calculator" {
		t.Errorf("expected focal class com.demo.Calculator, got %v", m.FocalClasses)
	}
	if got := m.AssertionCount(); got != 1 {
		t.Errorf("expected 1 assertion, got %d", got)
	}
}

func TestRunAnalyze_TextOutput(t *testing.T) {
	path := writeModel(t, sampleModelJSON)

	var stdout bytes.Buffer
	err := runAnalyze(context.Background(), analyzeParams{
		modelPath: path,
		format:    "text",
		stdout:    &stdout,
		stderr:    &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "com.demo.CalculatorTest") {
		t.Error("text output missing test class name")
	}
	if !strings.Contains(output, "addsNumbers()") {
		t.Error("text output missing test method signature")
	}
	if !strings.Contains(output, "Summary") {
		t.Error("text output missing summary section")
	}
}

func TestRunAnalyze_ClassFilter(t *testing.T) {
	path := writeModel(t, sampleModelJSON)

	var stdout bytes.Buffer
	err := runAnalyze(context.Background(), analyzeParams{
		modelPath: path,
		format:    "json",
		class:     "CalculatorTest",
		stdout:    &stdout,
		stderr:    &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}

	var rpt report.JSONReport
	if err := json.Unmarshal(stdout.Bytes(), &rpt); err != nil {
		t.Fatal(err)
	}
	if len(rpt.Project.Classes) != 1 {
		t.Fatalf("expected 1 filtered class, got %d", len(rpt.Project.Classes))
	}
	if rpt.Project.Totals.TestMethods != 1 {
		t.Errorf("expected filtered totals with 1 method, got %d",
			rpt.Project.Totals.TestMethods)
	}
}

func TestRunAnalyze_ClassFilterNotFound(t *testing.T) {
	path := writeModel(t, sampleModelJSON)

	err := runAnalyze(context.Background(), analyzeParams{
		modelPath: path,
		format:    "json",
		class:     "com.demo.NoSuchTest",
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for unknown class filter")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunAnalyze_ConfigFile(t *testing.T) {
	modelPath := writeModel(t, sampleModelJSON)

	cfgPath := filepath.Join(t.TempDir(), "testscope.yaml")
	cfg := "analysis:\n  app_packages:\n    - com.demo\n  workers: 2\nreachability:\n  max_depth: 3\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	err := runAnalyze(context.Background(), analyzeParams{
		modelPath:  modelPath,
		configPath: cfgPath,
		format:     "json",
		stdout:     &stdout,
		stderr:     &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("runAnalyze with config failed: %v", err)
	}

	var rpt report.JSONReport
	if err := json.Unmarshal(stdout.Bytes(), &rpt); err != nil {
		t.Fatal(err)
	}
	if rpt.Project.Totals.TestMethods != 1 {
		t.Errorf("expected 1 test method with app_packages config, got %d",
			rpt.Project.Totals.TestMethods)
	}
}

func TestRunAnalyze_MissingConfigFile(t *testing.T) {
	modelPath := writeModel(t, sampleModelJSON)

	err := runAnalyze(context.Background(), analyzeParams{
		modelPath:  modelPath,
		configPath: filepath.Join(t.TempDir(), "absent.yaml"),
		format:     "json",
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestFilterClasses_SimpleName(t *testing.T) {
	classes := []taxonomy.TestClassAnalysis{
		{Class: "com.demo.FooTest"},
		{Class: "com.demo.BarTest"},
	}

	got := filterClasses(classes, "FooTest")
	if len(got) != 1 || got[0].Class != "com.demo.FooTest" {
		t.Errorf("simple-name filter returned %v", got)
	}

	got = filterClasses(classes, "com.demo.BarTest")
	if len(got) != 1 || got[0].Class != "com.demo.BarTest" {
		t.Errorf("qualified filter returned %v", got)
	}

	if got := filterClasses(classes, "Baz"); got != nil {
		t.Errorf("expected no match for Baz, got %v", got)
	}
}

func TestSchemaCmd_Report(t *testing.T) {
	cmd := newSchemaCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("schema command failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("schema output is not valid JSON: %v", err)
	}
	if !strings.Contains(out.String(), "Testscope Analysis Report") {
		t.Error("expected report schema title in output")
	}
}

func TestSchemaCmd_Model(t *testing.T) {
	cmd := newSchemaCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"model"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("schema model command failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("model schema output is not valid JSON: %v", err)
	}
}

func TestSchemaCmd_Unknown(t *testing.T) {
	cmd := newSchemaCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"bogus"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown schema name")
	}
}
