package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/rhurkes/rofka/internal/record"
)

// Predicate decides whether a decoded projection is reported.
type Predicate interface {
	Match(key []byte, p record.StatusProjection) (bool, error)
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(key []byte, p record.StatusProjection) (bool, error)

func (f PredicateFunc) Match(key []byte, p record.StatusProjection) (bool, error) { return f(key, p) }

// StatusIn matches projections whose status is one of statuses. With no
// statuses it matches nothing.
func StatusIn(statuses ...record.Status) Predicate {
	set := make(map[record.Status]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return PredicateFunc(func(_ []byte, p record.StatusProjection) (bool, error) {
		return set[p.Status], nil
	})
}

// Default reports entries still waiting to be published.
func Default() Predicate { return StatusIn(record.StatusUnpublished) }

// All matches when every predicate matches.
func All(preds ...Predicate) Predicate {
	return PredicateFunc(func(key []byte, p record.StatusProjection) (bool, error) {
		for _, pred := range preds {
			ok, err := pred.Match(key, p)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	})
}

// CEL compiles a boolean CEL expression over the variables key (string,
// rendered with KeyText), tcin (string), version (int) and status (string).
// An empty expression matches everything.
//
//	status == "UNPUBLISHED" && version > 1
//	tcin.startsWith("12")
func CEL(expr string) (Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return PredicateFunc(func([]byte, record.StatusProjection) (bool, error) { return true, nil }), nil
	}
	env, err := cel.NewEnv(
		cel.Variable("key", cel.StringType),
		cel.Variable("tcin", cel.StringType),
		cel.Variable("version", cel.IntType),
		cel.Variable("status", cel.StringType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("query: compile filter: %w", iss.Err())
	}
	if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
		return nil, fmt.Errorf("query: filter must be boolean, got %v", ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("query: filter program: %w", err)
	}
	return celPredicate{prog: prog}, nil
}

type celPredicate struct {
	prog cel.Program
}

func (c celPredicate) Match(key []byte, p record.StatusProjection) (bool, error) {
	out, _, err := c.prog.Eval(map[string]any{
		"key":     KeyText(key),
		"tcin":    p.TCIN,
		"version": int64(p.Version),
		"status":  p.Status.String(),
	})
	if err != nil {
		return false, fmt.Errorf("query: evaluate filter: %w", err)
	}
	b, ok := out.Value().(bool)
	return ok && b, nil
}
