// Package pkg provides the core libraries for orgtower.
//
// # Overview
//
// orgtower turns the stakeholder lists produced by account research into a
// single org chart. Extraction is untrusted: ids repeat, managers point
// nowhere or in circles. The libraries repair that input, build one rooted
// reporting tree, lay it out and keep it editable.
//
// # Architecture
//
//	extraction documents
//	         ↓
//	    [extract] (merge documents, drop superseded requests)
//	         ↓
//	    [contact] (analysis model, field normalization)
//	         ↓
//	    [org/transform] (dedupe, sanitize references, break cycles)
//	         ↓
//	    [org] (rooted tree under a synthetic root)
//	         ↓
//	    [layout] (tidy top-down positions)
//	         ↓
//	    [mutate] (delete with report bridging, manual positions)
//	         ↓
//	    [render] + [render/sink] (scene, document, SVG/JSON/DOT)
//
// [pipeline] orchestrates build → layout → render with [cache]; [session]
// keeps an analysis and its view alive across edits, backed by memory,
// files or Redis.
//
// # Quick Start
//
//	a, _ := io.ImportAnalysis("acme.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, a, pipeline.Options{Formats: []string{"svg"}})
//	// result.Artifacts["svg"], result.Document, result.Report
package pkg
