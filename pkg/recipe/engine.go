// Package recipe provides the Lisp evaluation engine for collider bake
// recipes. It wraps zygomys in a sandboxed environment and produces a
// scene of named solids plus the bake jobs to run over them.
package recipe

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/colliderbake/pkg/bake"
	"github.com/chazu/colliderbake/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Job is one (bake ...) form: a strategy with its settings, applied to the
// listed parts or to the whole scene when Parts is empty.
type Job struct {
	Name     string
	Settings bake.Settings
	Parts    []string
}

// Strategy returns the strategy the job's settings belong to.
func (j Job) Strategy() bake.Strategy {
	return j.Settings.Strategy()
}

// Recipe is the full output of an evaluation.
type Recipe struct {
	Scene    *scene.Scene
	Jobs     []Job
	Warnings []scene.ValidationWarning
}

// Engine wraps the zygomys interpreter for recipe evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine creates an Engine with the default EvalTimeout.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout}
}

// WithTimeout returns an Engine that gives up after d. Non-positive d
// keeps EvalTimeout.
func WithTimeout(d time.Duration) *Engine {
	e := NewEngine()
	if d > 0 {
		e.timeout = d
	}
	return e
}

// Evaluate takes recipe source code and produces a new Recipe.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns recipe + nil errors + nil error
//   - On parse/eval/validation failure: returns nil recipe + eval errors + nil error
//   - On fatal failure (timeout, cancellation, panic): returns nil + nil + error
func (e *Engine) Evaluate(ctx context.Context, source string) (*Recipe, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		r, evalErrs, err := e.evaluate(source)
		ch <- evalResult{recipe: r, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ctx, ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Recipe, []EvalError, error) {
	r := &Recipe{Scene: scene.New()}

	// Empty source is a valid program that produces an empty recipe.
	if strings.TrimSpace(source) == "" {
		return r, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, r)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if evalErrs := r.check(); len(evalErrs) > 0 {
		return nil, evalErrs, nil
	}
	return r, nil, nil
}

// check validates the scene and job part references. Scene warnings are
// kept on the recipe.
func (r *Recipe) check() []EvalError {
	if len(r.Scene.Parts) == 0 && len(r.Jobs) == 0 {
		return nil
	}

	var errs []EvalError
	vr := r.Scene.Validate()
	for _, ve := range vr.Errors {
		errs = append(errs, EvalError{Message: ve.Error()})
	}
	r.Warnings = vr.Warnings

	for _, j := range r.Jobs {
		for _, name := range j.Parts {
			if r.Scene.Lookup(name) == nil {
				errs = append(errs, EvalError{Message: fmt.Sprintf("bake %q: no part named %q", j.Name, name)})
			}
		}
	}
	return errs
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
