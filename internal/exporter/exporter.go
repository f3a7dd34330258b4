// Package exporter turns imported entities into the target format's JSON
// artifacts (SPEC_FULL.md §4.6): fishing each structure's parent, cloning
// its snapshot, applying rules in document order, and producing both the
// snapshot and differential element arrays plus entity metadata. Value
// sets, code systems, instances, and mappings each get their own
// narrower export path since they don't carry an element array at all.
package exporter

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/fisher"
	"github.com/oxhq/fshc/internal/importer"
	"github.com/oxhq/fshc/internal/model"
)

// Exporter runs the full export pass over one imported source batch. The
// definition store and in-progress local package are reached only through
// fish (see Run), never directly: fisher.Fisher is the single point of
// parent/type resolution SPEC_FULL.md §4.6 describes.
type Exporter struct {
	tank  *importer.Tank
	cfg   *model.Config
	diags *diagnostic.Collector
	fish  *fisher.Fisher

	mu                sync.Mutex
	structures        map[string]*structureExport
	exportedInstances map[string]map[string]any
	instanceInFlight  map[string]bool
}

// New returns an Exporter over tank, configured by cfg, reporting
// failures to diags.
func New(tank *importer.Tank, cfg *model.Config, diags *diagnostic.Collector) *Exporter {
	return &Exporter{
		tank:              tank,
		cfg:               cfg,
		diags:             diags,
		structures:        make(map[string]*structureExport),
		exportedInstances: make(map[string]map[string]any),
		instanceInFlight:  make(map[string]bool),
	}
}

// Run exports in dependency-safe order: code systems and value sets, then
// extensions, resources, logicals and profiles, then mapping rules are
// applied to the exported structures, and instances are exported last. Structure
// export is memoized and recursive (see structure.go), so a profile that
// derives from another profile declared in the same batch resolves
// correctly regardless of which one a worker happens to start first.
func (ex *Exporter) Run(ctx context.Context, fish *fisher.Fisher) *model.Package {
	ex.fish = fish
	pkg := &model.Package{}

	for _, e := range ex.tank.All(model.KindCodeSystem) {
		cs := e.(*model.CodeSystem)
		doc := ex.exportCodeSystem(cs)
		pkg.CodeSystems = append(pkg.CodeSystems, model.Artifact{
			Kind: model.ArtifactCodeSystem, ResourceType: "CodeSystem", ID: idOf(cs.Header), Document: doc,
		})
	}

	for _, e := range ex.tank.All(model.KindValueSet) {
		vs := e.(*model.ValueSet)
		doc := ex.exportValueSet(vs)
		pkg.ValueSets = append(pkg.ValueSets, model.Artifact{
			Kind: model.ArtifactValueSet, ResourceType: "ValueSet", ID: idOf(vs.Header), Document: doc,
		})
	}

	runParallel(ctx, ex.cfg.Workers, ex.tank.All(model.KindExtension), func(e model.Entity) {
		ex.exportStructureEntity(e)
	})
	runParallel(ctx, ex.cfg.Workers, ex.tank.All(model.KindResource), func(e model.Entity) {
		ex.exportStructureEntity(e)
	})
	runParallel(ctx, ex.cfg.Workers, ex.tank.All(model.KindLogical), func(e model.Entity) {
		ex.exportStructureEntity(e)
	})
	runParallel(ctx, ex.cfg.Workers, ex.tank.All(model.KindProfile), func(e model.Entity) {
		ex.exportStructureEntity(e)
	})

	ex.applyMappings()

	var names []string
	for name := range ex.structures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		se := ex.structures[name]
		doc := ex.assembleStructureDocument(se)
		artifact := model.Artifact{Kind: se.kind, ResourceType: "StructureDefinition", ID: se.def.ID, Document: doc}
		switch se.kind {
		case model.ArtifactProfile:
			pkg.Profiles = append(pkg.Profiles, artifact)
		case model.ArtifactExtension:
			pkg.Extensions = append(pkg.Extensions, artifact)
		case model.ArtifactLogical:
			pkg.Logicals = append(pkg.Logicals, artifact)
		case model.ArtifactResource:
			pkg.Resources = append(pkg.Resources, artifact)
		}
	}

	for _, e := range ex.tank.All(model.KindInstance) {
		inst := e.(*model.Instance)
		doc := ex.resolveInstance(inst)
		usage := string(inst.Usage)
		if usage == "" {
			usage = string(model.UsageExample)
		}
		pkg.Instances = append(pkg.Instances, model.Artifact{
			Kind: model.ArtifactInstance, ResourceType: inst.InstanceOf, ID: idOf(inst.Header), Usage: usage, Document: doc,
		})
	}

	return pkg
}

func idOf(h model.Header) string {
	if h.Id != "" {
		return h.Id
	}
	return h.Name
}

// runParallel fans work out across a bounded worker pool sized by
// workers (0 means runtime.NumCPU()), honoring ctx cancellation between
// items.
func runParallel(ctx context.Context, workers int, items []model.Entity, fn func(model.Entity)) {
	if len(items) == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	work := make(chan model.Entity)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range work {
				select {
				case <-ctx.Done():
					return
				default:
					fn(e)
				}
			}
		}()
	}
feed:
	for _, e := range items {
		select {
		case work <- e:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()
}
