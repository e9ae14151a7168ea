package event

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Condition types.
const (
	CondAlways         = "always"
	CondFlagSet        = "flag_set"
	CondFlagNot        = "flag_not"
	CondRelationshipGT = "relationship_gt"
	CondRelationshipLT = "relationship_lt"
	CondMoralityGT     = "morality_gt"
	CondMoralityLT     = "morality_lt"
	CondContext        = "context"
	CondScript         = "script"
)

// Condition is one typed predicate over Facts.
type Condition struct {
	Type    string `yaml:"type"`
	Flag    string `yaml:"flag,omitempty"`
	Faction string `yaml:"faction,omitempty"`
	Value   int    `yaml:"value,omitempty"`
	Key     string `yaml:"key,omitempty"`
	Hook    string `yaml:"hook,omitempty"`
}

func (c Condition) validate() error {
	switch c.Type {
	case CondAlways:
		return nil
	case CondFlagSet, CondFlagNot:
		if c.Flag == "" {
			return fmt.Errorf("%s needs flag", c.Type)
		}
	case CondRelationshipGT, CondRelationshipLT:
		if c.Faction == "" {
			return fmt.Errorf("%s needs faction", c.Type)
		}
	case CondMoralityGT, CondMoralityLT:
	case CondContext:
		if c.Key == "" {
			return errors.New("context needs key")
		}
	case CondScript:
		if c.Hook == "" {
			return errors.New("script needs hook")
		}
	default:
		// Unknown types load and evaluate to false.
	}
	return nil
}

// Facts is the read-only view conditions are evaluated against.
type Facts struct {
	Area          string
	Morality      int
	Flags         map[string]bool
	Relationships map[string]int
	Context       map[string]bool
}

// Table returns facts as plain values for script predicates.
func (f Facts) Table() map[string]any {
	ctx := f.Context
	if ctx == nil {
		ctx = map[string]bool{}
	}
	return map[string]any{
		"area":          f.Area,
		"morality":      f.Morality,
		"flags":         f.Flags,
		"relationships": f.Relationships,
		"context":       ctx,
	}
}

// ScriptCaller evaluates a named Lua predicate.
type ScriptCaller interface {
	CallPredicate(areaID, hook string, facts map[string]any) (bool, error)
}

// evaluator evaluates conditions; all conditions combine with AND.
type evaluator struct {
	scripts ScriptCaller
	logger  *zap.Logger
}

func (ev evaluator) all(conds []Condition, f Facts) bool {
	for _, c := range conds {
		if !ev.one(c, f) {
			return false
		}
	}
	return true
}

func (ev evaluator) one(c Condition, f Facts) bool {
	switch c.Type {
	case CondAlways:
		return true
	case CondFlagSet:
		return f.Flags[c.Flag]
	case CondFlagNot:
		return !f.Flags[c.Flag]
	case CondRelationshipGT:
		return f.Relationships[c.Faction] > c.Value
	case CondRelationshipLT:
		return f.Relationships[c.Faction] < c.Value
	case CondMoralityGT:
		return f.Morality > c.Value
	case CondMoralityLT:
		return f.Morality < c.Value
	case CondContext:
		return f.Context[c.Key]
	case CondScript:
		if ev.scripts == nil {
			ev.logger.Warn("script condition without a script engine", zap.String("hook", c.Hook))
			return false
		}
		ok, err := ev.scripts.CallPredicate(f.Area, c.Hook, f.Table())
		if err != nil {
			ev.logger.Warn("script condition failed", zap.String("hook", c.Hook), zap.Error(err))
			return false
		}
		return ok
	default:
		ev.logger.Warn("unknown event condition type", zap.String("type", c.Type))
		return false
	}
}
