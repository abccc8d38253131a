// Package kernel wires the hypergraph store, event queue, derivation
// engine, contradiction manager, memory manager, meta-reasoner, and
// question handler into the single stepped reasoning loop spec §4.2
// describes, and exposes the public operations spec §6 names.
package kernel

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/config"
	"github.com/automenta/hypernars1-sub000/internal/contradiction"
	"github.com/automenta/hypernars1-sub000/internal/derive"
	"github.com/automenta/hypernars1-sub000/internal/events"
	"github.com/automenta/hypernars1-sub000/internal/memory"
	"github.com/automenta/hypernars1-sub000/internal/metareasoner"
	"github.com/automenta/hypernars1-sub000/internal/question"
	"github.com/automenta/hypernars1-sub000/internal/semantic"
	"github.com/automenta/hypernars1-sub000/internal/term"
)

// Kernel is one running instance of the reasoning system.
type Kernel struct {
	mu sync.RWMutex

	Config         *config.Config
	Store          *term.Store
	Queue          *events.Queue
	Derive         *derive.Engine
	Contradictions *contradiction.Manager
	Memory         *memory.Manager
	Questions      *question.Manager
	Semantic       *semantic.Index

	clock func() int64
	rng   func() float64

	activations map[string]float64
	seenPaths   map[string]map[uint64]bool

	currentStep           int
	stepsSinceMaintenance int

	thresholds       metareasoner.Thresholds
	focus            metareasoner.Focus
	resourceFractions metareasoner.ResourceFractions
	ruleEnabled      map[string]bool

	firingsSinceTick        int
	contradictionsSinceTick int
	tickStart               int64
	questionResponseSamples []float64
	lastMetrics             metareasoner.Metrics

	observers []Observer
}

// New builds a kernel wired from cfg (or spec defaults if cfg is nil).
func New(cfg *config.Config) *Kernel {
	if cfg == nil {
		cfg = config.Default()
	}
	k := &Kernel{
		Config:            cfg,
		Store:             term.NewStore(cfg.BeliefCapacity),
		Queue:             events.New(),
		Derive:            derive.NewEngine(),
		Contradictions:    contradiction.NewManager(cfg.ContradictionThreshold),
		Memory:            memory.NewManager(cfg.MinConceptsForForgetting, cfg.ForgettingCheckSampleSize, cfg.ForgettingThreshold),
		Questions:         question.NewManager(),
		activations:       make(map[string]float64),
		seenPaths:         make(map[string]map[uint64]bool),
		thresholds: metareasoner.Thresholds{
			InferenceThreshold: cfg.InferenceThreshold,
			BudgetThreshold:    cfg.BudgetThreshold,
			MaxPathLength:      cfg.MaxPathLength,
		},
		focus:             metareasoner.FocusDefault,
		resourceFractions: metareasoner.DefaultResourceFractions(),
		ruleEnabled:       make(map[string]bool),
		clock:             func() int64 { return time.Now().UnixNano() },
		rng:               rand.Float64,
	}
	k.tickStart = k.clock()
	for _, typ := range []string{
		term.TypeInheritance, term.TypeSimilarity, term.TypeImplication,
		term.TypeEquivalence, term.TypeTemporalRelation,
	} {
		for _, r := range k.Derive.Rules(typ) {
			k.ruleEnabled[r.Name] = r.Enabled
		}
	}
	return k
}

// SetClock overrides the kernel's time source (tests use a fixed or
// manually advanced clock for reproducible timing).
func (k *Kernel) SetClock(c func() int64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.clock = c
}

// SetRNG overrides the kernel's forgetting-pass randomness source.
func (k *Kernel) SetRNG(r func() float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rng = r
}

// SetSemanticIndex attaches an optional fuzzy-recall index; queries that
// find no exact structural match fall back to it if set.
func (k *Kernel) SetSemanticIndex(ix *semantic.Index) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.Semantic = ix
}

func (k *Kernel) now() int64 {
	return k.clock()
}

// addHyperedgeLocked implements spec §4.1: locate-or-create, revise, then
// (on change) run contradiction detection and enqueue a fresh propagation
// event. Caller must hold k.mu.
func (k *Kernel) addHyperedgeLocked(typ string, args []string, opts term.AddOptions) string {
	if opts.Timestamp == 0 {
		opts.Timestamp = k.clock()
	}
	res := k.Store.AddHyperedge(typ, args, opts)
	if res.Created {
		k.emit(EventConceptFormed, map[string]any{"id": res.ID, "type": typ})
		if k.Semantic != nil {
			_ = k.Semantic.IndexTerm(context.Background(), res.ID, renderContent(res.Edge))
		}
	}
	if res.NeedsUpdate {
		if res.Created {
			k.emit(EventBeliefAdded, map[string]any{"id": res.ID})
		} else {
			k.emit(EventRevision, map[string]any{"id": res.ID})
		}
		for _, rec := range k.Contradictions.Detect(res.Edge) {
			k.contradictionsSinceTick++
			k.emit(EventContradictionDetected, map[string]any{
				"id": rec.ID, "edge": rec.HyperedgeID, "severity": rec.Severity,
			})
		}
		k.Memory.Touch(res.ID)
		k.Questions.TryAnswer(res.Edge)

		bv := budget.Full()
		if res.NewBelief != nil {
			bv = res.NewBelief.Budget
		}
		k.pushGuarded(res.ID, 1.0, bv, nil, "assert")
	}
	return res.ID
}

// AddHyperedge is the public, locking form of addHyperedgeLocked.
func (k *Kernel) AddHyperedge(typ string, args []string, opts term.AddOptions) string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.addHyperedgeLocked(typ, args, opts)
}

func renderContent(edge *term.Hyperedge) string {
	if len(edge.Args) == 0 {
		return edge.Type
	}
	s := edge.Type + "("
	for i, a := range edge.Args {
		if i > 0 {
			s += ","
		}
		s += a
	}
	return s + ")"
}

func hashToken(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// pushGuarded enqueues a propagation/activation event toward target,
// applying the derivation-depth guard, budget-threshold guard, and a
// path-hash cycle guard (spec §4.2 step 4, §3 Event invariants). parent is
// nil for a freshly asserted/derived edge's own re-entry event.
func (k *Kernel) pushGuarded(target string, activation float64, bv budget.Value, parent *events.Event, tag string) bool {
	pathLength := 0
	var pathHash uint64
	var derivationPath []string
	if parent != nil {
		pathLength = parent.PathLength + 1
		pathHash = parent.PathHash
		derivationPath = append(append([]string{}, parent.DerivationPath...), target)
	} else {
		derivationPath = []string{target}
	}
	pathHash ^= hashToken(tag + "|" + target)

	if pathLength > k.Config.MaxPathLength {
		return false
	}
	if bv.Priority < k.Config.BudgetThreshold {
		return false
	}
	seen := k.seenPaths[target]
	if seen == nil {
		seen = make(map[uint64]bool)
		k.seenPaths[target] = seen
	}
	if seen[pathHash] {
		return false
	}
	seen[pathHash] = true

	k.Queue.Push(&events.Event{
		Target: target, Activation: activation, Budget: bv,
		PathHash: pathHash, PathLength: pathLength, DerivationPath: derivationPath,
	})
	return true
}

func (k *Kernel) applyConclusion(c derive.Conclusion, parent *events.Event) {
	if parent.PathLength >= k.Config.MaxPathLength {
		return
	}
	if c.Budget.Total() < k.Config.InferenceThreshold {
		return
	}
	_, existed := k.Store.Index.Structural(c.Type, c.Args)
	t, b := c.Truth, c.Budget
	id := k.addHyperedgeLocked(c.Type, c.Args, term.AddOptions{
		Truth: &t, Budget: &b, Premises: c.Premises, DerivedBy: c.DerivedBy, Timestamp: k.clock(),
	})
	if !existed && c.DerivedBy == "inheritance-transitivity" {
		k.emit(EventShortcutCreated, map[string]any{"id": id})
	}
}

func (k *Kernel) checkRuleTransitions(triggerType string) {
	for _, r := range k.Derive.Rules(triggerType) {
		prev, tracked := k.ruleEnabled[r.Name]
		if tracked && prev != r.Enabled {
			if r.Enabled {
				k.emit(EventRuleEnabled, map[string]any{"rule": r.Name})
			} else {
				k.emit(EventRuleDisabled, map[string]any{"rule": r.Name})
			}
		}
		k.ruleEnabled[r.Name] = r.Enabled
	}
}

func (k *Kernel) recordQuestionResponse(seconds float64) {
	k.questionResponseSamples = append(k.questionResponseSamples, seconds)
	if len(k.questionResponseSamples) > 20 {
		k.questionResponseSamples = k.questionResponseSamples[1:]
	}
}

func (k *Kernel) meanQuestionResponseSeconds() float64 {
	if len(k.questionResponseSamples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range k.questionResponseSamples {
		sum += s
	}
	return sum / float64(len(k.questionResponseSamples))
}

// Step runs one iteration of spec §4.2's loop: pop the highest-budget
// event, update activation, fire derivation rules, propagate a decayed
// wave to neighbors, periodically sweep pending questions, and run
// maintenance on the configured interval. It returns false only when the
// queue was empty (spec §8: "no work" is not an error).
func (k *Kernel) Step() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.stepLocked()
}

func (k *Kernel) stepLocked() bool {
	ev, ok := k.Queue.Pop()
	if !ok {
		return false
	}
	if ev.Budget.Priority < k.Config.BudgetThreshold {
		return true
	}

	prevAct := k.activations[ev.Target]
	k.activations[ev.Target] = budget.Clamp01(math.Max(prevAct, ev.Activation))

	if edge, ok := k.Store.Get(ev.Target); ok {
		ctx := derive.Context{Store: k.Store, Config: k.Config, Event: ev, Edge: edge, Now: k.clock()}
		results := k.Derive.Fire(ctx)
		k.firingsSinceTick += len(results)
		for _, res := range results {
			for _, c := range res.Conclusions {
				k.applyConclusion(c, ev)
			}
			for _, a := range res.Activations {
				k.pushGuarded(a.Target, a.Budget.Total(), a.Budget, ev, "activation")
			}
		}
		k.checkRuleTransitions(edge.Type)
	}

	for _, nb := range k.Store.Index.Neighbors(ev.Target) {
		decayedBudget := ev.Budget.Scale(1 - k.Config.Decay)
		decayedActivation := ev.Activation * (1 - k.Config.Decay)
		k.pushGuarded(nb, decayedActivation, decayedBudget, ev, "propagate")
	}

	k.currentStep++

	if k.currentStep%k.Config.QuestionResolutionInterval == 0 {
		now := k.clock()
		for _, id := range k.Questions.Sweep(now) {
			if pq, ok := k.Questions.Get(id); ok {
				k.recordQuestionResponse(float64(now-pq.CreatedAt) / float64(time.Second))
				k.Memory.PopContext()
			}
		}
	}

	k.stepsSinceMaintenance++
	if k.stepsSinceMaintenance >= k.Config.MemoryMaintenanceInterval {
		k.maintenanceLocked()
		k.stepsSinceMaintenance = 0
	}

	k.emit(EventStep, map[string]any{"step": k.currentStep, "target": ev.Target})
	return true
}

// Run drives Step up to maxSteps times, stopping early if the queue runs
// dry or callback returns false. callback may be nil. It returns the
// number of steps actually taken.
func (k *Kernel) Run(maxSteps int, callback func(step int) bool) int {
	ran := 0
	for i := 0; i < maxSteps; i++ {
		worked := k.Step()
		if worked {
			ran++
		}
		if callback != nil && !callback(i) {
			break
		}
		if !worked {
			break
		}
		if (i+1)%100 == 0 {
			k.shrinkCaches()
		}
	}
	return ran
}

// shrinkCaches bounds the cycle-guard table's memory growth across long
// runs (spec §8 "long runs must not grow state unboundedly").
func (k *Kernel) shrinkCaches() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.seenPaths) > 5000 {
		k.seenPaths = make(map[string]map[uint64]bool)
	}
}

// maintenanceLocked runs the maintenance phase in fixed order: memory
// (importance tick, forgetting, belief capacity), contradiction resolution,
// meta-reasoning, popularity decay, then queue pruning. It has no learning,
// temporal-horizon or goal phase.
func (k *Kernel) maintenanceLocked() {
	now := k.clock()
	pendingQ := k.Questions.ProtectedEdgeIDs()

	k.Memory.Tick(k.activations, pendingQ, nil)
	forgotten := k.Memory.Forget(k.Store, k.activations, pendingQ, k.rng, k.clock())
	for _, fr := range forgotten {
		if fr.Deleted {
			delete(k.activations, fr.EdgeID)
			k.emit(EventKnowledgePruned, map[string]any{"id": fr.EdgeID})
		}
	}
	if len(forgotten) > 0 {
		k.emit(EventPruning, map[string]any{"count": len(forgotten)})
	}
	if newCap := memory.DynamicBeliefCapacity(k.Config.BeliefCapacity, k.Store.Len()); newCap != k.Config.BeliefCapacity {
		k.Config.BeliefCapacity = newCap
		k.Store.BeliefCapacity = newCap
	}

	for _, rec := range k.Contradictions.Pending() {
		strategy := k.Contradictions.Resolve(k.Store, rec)
		if strategy == "" {
			if _, ok := k.Contradictions.Specialize(k.Store, rec); ok {
				strategy = contradiction.Specialize
			}
		}
		if strategy != "" {
			k.emit(EventContradictionResolved, map[string]any{"id": rec.ID, "strategy": string(strategy)})
		} else {
			k.logf("warn", "contradiction %s on %s left unresolved this tick", rec.ID, rec.HyperedgeID)
		}
	}

	deltaSeconds := float64(now-k.tickStart) / float64(time.Second)
	metrics := metareasoner.ComputeMetrics(
		k.firingsSinceTick, k.contradictionsSinceTick, deltaSeconds, k.Queue.Len(),
		k.meanQuestionResponseSeconds(), float64(k.Config.QuestionTimeoutMS)/1000,
	)
	issues := metareasoner.DetectIssues(metrics, k.Queue.Len())
	k.thresholds = metareasoner.Adapt(k.thresholds, issues)
	k.Config.InferenceThreshold = k.thresholds.InferenceThreshold
	k.Config.BudgetThreshold = k.thresholds.BudgetThreshold
	k.Config.MaxPathLength = k.thresholds.MaxPathLength

	if newFocus := metareasoner.ResolveFocus(issues); newFocus != k.focus {
		k.focus = newFocus
		k.emit(EventFocusChanged, map[string]any{"focus": string(newFocus)})
	}
	k.resourceFractions = metareasoner.AdjustResourceFractions(k.resourceFractions, k.focus, metareasoner.AdaptationRate)
	k.lastMetrics = metrics
	k.firingsSinceTick = 0
	k.contradictionsSinceTick = 0
	k.tickStart = now

	k.Store.Index.DecayPopularity(0.9)

	if removed := k.Queue.Prune(k.Config.BudgetThreshold); removed > 0 {
		k.emit(EventPruning, map[string]any{"queueRemoved": removed})
	}

	k.emit(EventMaintenanceInfo, map[string]any{"step": k.currentStep, "focus": string(k.focus)})
	k.logf("debug", "maintenance at step %d: focus=%s inferenceThreshold=%.3f queueLen=%d",
		k.currentStep, k.focus, k.Config.InferenceThreshold, k.Queue.Len())
}

// Metrics returns the most recently computed meta-reasoner snapshot.
func (k *Kernel) Metrics() metareasoner.Metrics {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.lastMetrics
}

// Focus returns the meta-reasoner's current attention mode.
func (k *Kernel) Focus() metareasoner.Focus {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.focus
}

// ResourceFractions returns the meta-reasoner's current allocation split.
func (k *Kernel) ResourceFractions() metareasoner.ResourceFractions {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.resourceFractions
}

// CurrentStep returns the number of steps run so far.
func (k *Kernel) CurrentStep() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.currentStep
}
