package report

// Schema is the JSON Schema (Draft 2020-12) for the testscope
// analysis JSON output. It documents the structure returned by
// WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/testscope/analysis-report.schema.json",
  "title": "Testscope Analysis Report",
  "description": "Output schema for testscope analyze --format=json",
  "type": "object",
  "required": ["version", "project"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Schema version (semver)"
    },
    "project": { "$ref": "#/$defs/ProjectAnalysis" }
  },
  "$defs": {
    "ProjectAnalysis": {
      "type": "object",
      "required": ["project", "test_classes", "totals", "metadata"],
      "properties": {
        "project": {
          "type": "string",
          "description": "Project or dataset identifier"
        },
        "test_classes": {
          "type": "array",
          "items": { "$ref": "#/$defs/TestClassAnalysis" }
        },
        "totals": { "$ref": "#/$defs/Totals" },
        "metadata": { "$ref": "#/$defs/Metadata" }
      }
    },
    "TestClassAnalysis": {
      "type": "object",
      "required": ["class", "frameworks", "is_bdd", "test_methods"],
      "properties": {
        "class": {
          "type": "string",
          "description": "Qualified test class name"
        },
        "frameworks": {
          "oneOf": [
            { "type": "array", "items": { "type": "string" } },
            { "type": "null" }
          ],
          "description": "Detected testing frameworks"
        },
        "is_bdd": { "type": "boolean" },
        "setups": {
          "type": "array",
          "items": { "$ref": "#/$defs/FixtureInfo" }
        },
        "teardowns": {
          "type": "array",
          "items": { "$ref": "#/$defs/FixtureInfo" }
        },
        "test_methods": {
          "oneOf": [
            { "type": "array", "items": { "$ref": "#/$defs/TestMethodAnalysis" } },
            { "type": "null" }
          ]
        },
        "skipped_methods": {
          "type": "array",
          "items": { "type": "string" },
          "description": "Methods excluded after an analysis failure"
        }
      }
    },
    "TestMethodAnalysis": {
      "type": "object",
      "required": [
        "id", "class", "signature", "test_type", "focal_classes",
        "helper_count", "ncloc", "ncloc_with_helpers",
        "cyclomatic_complexity", "cyclomatic_complexity_with_helpers",
        "call_assertion_sequence"
      ],
      "properties": {
        "id": {
          "type": "string",
          "description": "Stable identifier (tm-XXXXXXXX)",
          "pattern": "^tm-[0-9a-f]{8}$"
        },
        "class": { "type": "string" },
        "signature": { "type": "string" },
        "test_type": {
          "type": "string",
          "enum": ["ui", "api", "library", "unit", "integration", "unknown"]
        },
        "focal_classes": {
          "oneOf": [
            { "type": "array", "items": { "$ref": "#/$defs/FocalClass" } },
            { "type": "null" }
          ]
        },
        "helper_count": { "type": "integer", "minimum": 0 },
        "ncloc": { "type": "integer", "minimum": 0 },
        "ncloc_with_helpers": { "type": "integer", "minimum": 0 },
        "cyclomatic_complexity": { "type": "integer", "minimum": 0 },
        "cyclomatic_complexity_with_helpers": { "type": "integer", "minimum": 0 },
        "call_assertion_sequence": {
          "oneOf": [
            { "type": "array", "items": { "$ref": "#/$defs/CallAssertionEntry" } },
            { "type": "null" }
          ]
        },
        "fixtures": {
          "type": "array",
          "items": { "type": "string" },
          "description": "Applicable fixtures as Class#signature references"
        },
        "mocks": {
          "type": "array",
          "items": { "$ref": "#/$defs/MockInfo" }
        },
        "inputs": {
          "type": "array",
          "items": { "$ref": "#/$defs/TestInput" }
        }
      }
    },
    "FocalClass": {
      "type": "object",
      "required": ["name", "invocations"],
      "properties": {
        "name": { "type": "string" },
        "invocations": { "type": "integer", "minimum": 1 }
      }
    },
    "CallAssertionEntry": {
      "type": "object",
      "required": ["position", "kind", "callee", "wrapped"],
      "properties": {
        "position": { "type": "integer", "minimum": 0 },
        "kind": {
          "type": "string",
          "enum": ["assertion", "regular-call", "mock-setup"]
        },
        "category": {
          "type": "string",
          "enum": [
            "Truthiness", "Equality", "Identity", "Nullness",
            "Numeric-Tolerance", "Throwable", "Collection",
            "String", "Comparison", "Unclassified"
          ]
        },
        "callee": { "type": "string" },
        "wrapped": {
          "type": "boolean",
          "description": "True when inlined from a reachable helper"
        }
      }
    },
    "FixtureInfo": {
      "type": "object",
      "required": ["class", "signature", "role", "order"],
      "properties": {
        "class": { "type": "string" },
        "signature": { "type": "string" },
        "role": { "type": "string", "enum": ["setup", "teardown"] },
        "order": {
          "type": "string",
          "enum": [
            "before_class", "before_each_test",
            "after_each_test", "after_class", "unknown"
          ]
        },
        "framework": { "type": "string" },
        "cleanup_calls": {
          "type": "array",
          "items": { "$ref": "#/$defs/CleanupCall" }
        }
      }
    },
    "CleanupCall": {
      "type": "object",
      "required": ["method", "matches_setup"],
      "properties": {
        "method": { "type": "string" },
        "resource_type": { "type": "string" },
        "matches_setup": { "type": "boolean" }
      }
    },
    "MockInfo": {
      "type": "object",
      "required": ["framework", "mocked_type", "stub_calls", "verify_calls"],
      "properties": {
        "framework": { "type": "string" },
        "mocked_type": { "type": "string" },
        "stub_calls": { "type": "integer", "minimum": 0 },
        "verify_calls": { "type": "integer", "minimum": 0 }
      }
    },
    "TestInput": {
      "type": "object",
      "required": ["format"],
      "properties": {
        "line": { "type": "integer" },
        "format": {
          "type": "string",
          "enum": ["json", "xml", "html", "yaml", "sql", "csv", "undetermined"]
        },
        "preview": { "type": "string" }
      }
    },
    "Totals": {
      "type": "object",
      "required": ["test_classes", "test_methods", "skipped_methods", "assertions", "mocks"],
      "properties": {
        "test_classes": { "type": "integer", "minimum": 0 },
        "test_methods": { "type": "integer", "minimum": 0 },
        "skipped_methods": { "type": "integer", "minimum": 0 },
        "assertions": { "type": "integer", "minimum": 0 },
        "mocks": { "type": "integer", "minimum": 0 },
        "test_types": { "$ref": "#/$defs/CountMap" },
        "frameworks": { "$ref": "#/$defs/CountMap" },
        "fixture_orders": { "$ref": "#/$defs/CountMap" },
        "input_formats": { "$ref": "#/$defs/CountMap" }
      }
    },
    "CountMap": {
      "oneOf": [
        {
          "type": "object",
          "additionalProperties": { "type": "integer" }
        },
        { "type": "null" }
      ]
    },
    "Metadata": {
      "type": "object",
      "required": ["testscope_version", "go_version", "duration_ms"],
      "properties": {
        "testscope_version": { "type": "string" },
        "go_version": { "type": "string" },
        "duration_ms": {
          "type": "integer",
          "description": "Analysis duration in milliseconds"
        },
        "timestamp": {
          "type": "string",
          "description": "Run timestamp (RFC 3339)"
        },
        "warnings": {
          "oneOf": [
            { "type": "array", "items": { "type": "string" } },
            { "type": "null" }
          ],
          "description": "Analysis warnings, if any"
        }
      }
    }
  }
}`
