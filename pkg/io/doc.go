// Package io reads and writes account analyses as JSON or TOML.
//
// # Formats
//
// JSON mirrors the shape an extraction step produces:
//
//	{
//	  "accountName": "Acme",
//	  "contacts": [
//	    {"id": "ceo", "name": "Ada", "managerId": null, "seniorityRank": 1},
//	    {"id": "cto", "name": "Bo", "managerId": "ceo", "seniorityRank": 2}
//	  ]
//	}
//
// TOML uses the same keys, with one [[contacts]] table per contact. It is
// meant for hand-maintained fixtures:
//
//	accountName = "Acme"
//
//	[[contacts]]
//	id = "cto"
//	name = "Bo"
//	managerId = "ceo"
//	seniorityRank = 2
//
// # Normalization
//
// Everything read through this package is passed through
// [contact.NormalizeAnalysis]: enum values are parsed leniently, ranks are
// clamped and blank manager references become nil. Structural problems
// (duplicate ids, dangling or looping managers) are left in place for the
// pipeline to repair.
//
// # Import and Export
//
// [ImportAnalysis] and [ExportAnalysis] pick the format from the file
// extension; [ReadAnalysis] and [WriteAnalysis] take it explicitly.
//
// [contact.NormalizeAnalysis]: github.com/matzehuels/orgtower/pkg/contact.NormalizeAnalysis
package io
