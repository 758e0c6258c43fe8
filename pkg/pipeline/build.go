package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/org"
	"github.com/matzehuels/orgtower/pkg/org/transform"
)

// Built is the output of the build stage.
type Built struct {
	// Analysis is the normalized input, before the department filter.
	Analysis contact.Analysis

	// Tree is the reconciled hierarchy of the filtered working set.
	Tree *org.Tree

	// Report counts the repairs made while building.
	Report transform.Report
}

// Build normalizes a, applies the department filter and assembles the
// reconciled tree. An analysis without contacts fails with NO_STAKEHOLDERS;
// a filter that matches nobody yields a tree holding only the root.
func Build(ctx context.Context, a contact.Analysis, opts Options) (*Built, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnBuildStart(ctx, len(a.Contacts))

	built, err := build(a, opts)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, built.Tree.ContactCount(), built.Report.Rerouted(), time.Since(start), nil)
	return built, nil
}

func build(a contact.Analysis, opts Options) (*Built, error) {
	logger := opts.Logger

	if len(a.Contacts) == 0 {
		return nil, errors.New(errors.ErrCodeNoStakeholders, "no stakeholders identified")
	}
	norm := contact.NormalizeAnalysis(a)

	working := transform.FilterDepartment(norm.Contacts, opts.Department)
	logger.Debug("filtered contacts", "scope", opts.describe(), "kept", len(working), "total", len(norm.Contacts))

	rootID := opts.RootID
	if rootID == "" {
		rootID = org.NewRootID(func(id string) bool {
			_, taken := norm.Contact(id)
			return taken
		})
	}

	members, report := transform.Reconcile(working, rootID)
	logReport(opts, report)

	tree, err := org.Build(members, org.NewRoot(rootID))
	if err != nil {
		logger.Error("tree invariant violated", "error", err)
		return nil, err
	}
	return &Built{Analysis: norm, Tree: tree, Report: report}, nil
}

func logReport(opts Options, r transform.Report) {
	logger := opts.Logger
	if r.MissingIDs > 0 {
		logger.Warn("dropped contacts without id", "count", r.MissingIDs)
	}
	if r.Duplicates > 0 {
		logger.Warn("dropped duplicate contacts", "count", r.Duplicates)
	}
	if r.SelfLoops > 0 {
		logger.Debug("rerouted self-managed contacts", "count", r.SelfLoops)
	}
	if r.Dangling > 0 {
		logger.Debug("rerouted dangling manager references", "count", r.Dangling)
	}
	if r.CyclesBroken > 0 {
		logger.Warn("broke reporting cycles", "count", r.CyclesBroken)
	}
}

type shapeEntry struct {
	ID     string `json:"id"`
	Parent string `json:"parent,omitempty"`
}

// TreeHash returns a content hash of t's shape in pre-order. The synthetic
// root id is left out, so two builds of the same working set hash the same.
func TreeHash(t *org.Tree) string {
	shape := make([]shapeEntry, 0, t.Len())
	for _, n := range t.Nodes() {
		if n.Synthetic {
			continue
		}
		parent := n.ParentID
		if parent == t.RootID() {
			parent = ""
		}
		shape = append(shape, shapeEntry{ID: n.ID(), Parent: parent})
	}
	data, _ := json.Marshal(shape)
	return cache.Hash(data)
}
