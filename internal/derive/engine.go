package derive

import "sort"

// Engine holds the rule registry keyed by trigger type (spec §4.3).
type Engine struct {
	rules map[string][]*Rule
}

// NewEngine creates an engine with the spec's built-in rule set registered.
func NewEngine() *Engine {
	e := &Engine{rules: make(map[string][]*Rule)}
	for _, r := range builtinRules() {
		e.Register(r)
	}
	return e
}

// Register adds a rule to its trigger type's list, keeping the list sorted
// by descending priority.
func (e *Engine) Register(r *Rule) {
	e.rules[r.TriggerType] = append(e.rules[r.TriggerType], r)
	e.sortRules(r.TriggerType)
}

func (e *Engine) sortRules(triggerType string) {
	list := e.rules[triggerType]
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority() > list[j].Priority()
	})
}

// Rules returns every rule registered for triggerType, in priority order.
func (e *Engine) Rules(triggerType string) []*Rule {
	return e.rules[triggerType]
}

// RuleByName finds a rule across every trigger type, used by the
// meta-reasoner to adjust priorities directly.
func (e *Engine) RuleByName(name string) (*Rule, bool) {
	for _, list := range e.rules {
		for _, r := range list {
			if r.Name == name {
				return r, true
			}
		}
	}
	return nil, false
}

// Fire applies every enabled rule registered for ctx.Edge.Type, in priority
// order, collecting their conclusions and productivity reports. Rules are
// re-sorted after firing since their priority is a function of their
// observed success rate, which this call just updated.
func (e *Engine) Fire(ctx Context) []Result {
	triggerType := ctx.Edge.Type
	var results []Result
	for _, r := range e.rules[triggerType] {
		if !r.Enabled {
			continue
		}
		res := r.Apply(ctx)
		r.RecordAttempt(res.Success)
		results = append(results, res)
	}
	e.sortRules(triggerType)
	return results
}
