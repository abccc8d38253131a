package kernel

import "fmt"

// EventType names one of the kernel's emitted notification kinds (spec §6
// "Emitted events").
type EventType string

const (
	EventBeliefAdded           EventType = "belief-added"
	EventRevision              EventType = "revision"
	EventContradictionDetected EventType = "contradiction-detected"
	EventContradictionResolved EventType = "contradiction-resolved"
	EventFocusChanged          EventType = "focus-changed"
	EventKnowledgePruned       EventType = "knowledge-pruned"
	EventConceptFormed         EventType = "concept-formed"
	EventShortcutCreated       EventType = "shortcut-created"
	EventRuleEnabled           EventType = "rule-enabled"
	EventRuleDisabled          EventType = "rule-disabled"
	EventPruning               EventType = "pruning"
	EventMaintenanceInfo       EventType = "maintenance-info"
	EventStep                  EventType = "step"
	EventLog                   EventType = "log"
)

// Event is one notification delivered synchronously within the triggering
// step (spec §5 "Ordering").
type Event struct {
	Type      EventType
	Data      map[string]any
	Timestamp int64
}

// Observer receives every event the kernel emits.
type Observer func(Event)

// On registers an observer. Observers are called synchronously, in
// registration order, from within the step that triggers them.
func (k *Kernel) On(o Observer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.observers = append(k.observers, o)
}

func (k *Kernel) emit(t EventType, data map[string]any) {
	ev := Event{Type: t, Data: data, Timestamp: k.now()}
	for _, o := range k.observers {
		o(ev)
	}
}

var logLevelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// logf emits a log event if level is at or above the configured logLevel
// (spec §6 logLevel: debug|info|warn|error), the way cmd/server gates its
// stdlib log.Logger on DEBUG — here the gate decides whether to emit the
// event at all, leaving the destination to whatever observer is attached.
func (k *Kernel) logf(level, format string, args ...any) {
	configured, ok := logLevelRank[k.Config.LogLevel]
	if !ok {
		configured = logLevelRank["info"]
	}
	if r, ok := logLevelRank[level]; !ok || r < configured {
		return
	}
	k.emit(EventLog, map[string]any{"level": level, "message": fmt.Sprintf(format, args...)})
}
