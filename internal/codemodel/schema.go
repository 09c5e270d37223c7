package codemodel

// Schema is the JSON Schema (Draft 2020-12) for code model documents.
// Extractor output is validated against it before analysis begins so
// malformed corpus entries fail at the boundary, not mid-batch.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/testscope/code-model.schema.json",
  "title": "Testscope Code Model",
  "description": "Structural model of an application's classes and methods",
  "type": "object",
  "required": ["project", "classes"],
  "properties": {
    "project": {
      "type": "string",
      "description": "Project or dataset identifier"
    },
    "classes": {
      "type": "array",
      "items": { "$ref": "#/$defs/Class" }
    }
  },
  "$defs": {
    "Class": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {
          "type": "string",
          "description": "Fully qualified class name"
        },
        "package": { "type": "string" },
        "is_interface": { "type": "boolean" },
        "modifiers": { "type": "array", "items": { "type": "string" } },
        "annotations": { "type": "array", "items": { "type": "string" } },
        "imports": { "type": "array", "items": { "type": "string" } },
        "extends": { "type": "array", "items": { "type": "string" } },
        "implements": { "type": "array", "items": { "type": "string" } },
        "fields": {
          "type": "array",
          "items": { "$ref": "#/$defs/Field" }
        },
        "methods": {
          "type": "array",
          "items": { "$ref": "#/$defs/Method" }
        }
      }
    },
    "Method": {
      "type": "object",
      "required": ["signature"],
      "properties": {
        "signature": { "type": "string" },
        "annotations": { "type": "array", "items": { "type": "string" } },
        "modifiers": { "type": "array", "items": { "type": "string" } },
        "return_type": { "type": "string" },
        "is_constructor": { "type": "boolean" },
        "code": {
          "type": "string",
          "description": "Method body source text"
        },
        "variables": {
          "type": "array",
          "items": { "$ref": "#/$defs/Variable" }
        },
        "call_sites": {
          "type": "array",
          "items": { "$ref": "#/$defs/CallSite" }
        },
        "literals": {
          "type": "array",
          "items": { "$ref": "#/$defs/Literal" }
        }
      }
    },
    "CallSite": {
      "type": "object",
      "required": ["method", "signature", "position"],
      "properties": {
        "method": { "type": "string" },
        "signature": { "type": "string" },
        "callee_class": {
          "type": "string",
          "description": "Qualified declaring class, absent when unresolved"
        },
        "receiver_type": { "type": "string" },
        "receiver_name": { "type": "string" },
        "arg_names": { "type": "array", "items": { "type": "string" } },
        "arg_types": { "type": "array", "items": { "type": "string" } },
        "is_constructor": { "type": "boolean" },
        "position": { "type": "integer", "minimum": 0 },
        "line": { "type": "integer" }
      }
    },
    "Field": {
      "type": "object",
      "required": ["name", "type"],
      "properties": {
        "name": { "type": "string" },
        "type": { "type": "string" },
        "annotations": { "type": "array", "items": { "type": "string" } },
        "line": { "type": "integer" }
      }
    },
    "Variable": {
      "type": "object",
      "required": ["name", "type"],
      "properties": {
        "name": { "type": "string" },
        "type": { "type": "string" },
        "line": { "type": "integer" }
      }
    },
    "Literal": {
      "type": "object",
      "required": ["value"],
      "properties": {
        "value": { "type": "string" },
        "line": { "type": "integer" }
      }
    }
  }
}`
