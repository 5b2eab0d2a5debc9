package task

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/fragmentgrid/internal/action"
	"github.com/specialistvlad/fragmentgrid/internal/config"
	"github.com/specialistvlad/fragmentgrid/internal/ctxlog"
	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/node"
	"golang.org/x/sync/singleflight"
)

// TaskKey is the fragment configuration key naming the task to run.
const TaskKey = "data-task"

// ErrConfiguration wraps every error caused by an invalid task graph.
var ErrConfiguration = errors.New("graph configuration error")

// ActionProvider resolves action aliases for the compiler.
type ActionProvider interface {
	Get(ctx context.Context, alias string) (action.Action, bool, error)
	Options(alias string) (*config.ActionOptions, bool)
}

// Compiler turns declared task graphs into executable Tasks and keeps every
// successfully compiled Task for reuse.
type Compiler struct {
	tasks   map[string]*config.NodeOptions
	actions ActionProvider
	newID   func() string

	compiled sync.Map // task name -> *Task
	group    singleflight.Group
}

// NewCompiler creates a compiler over the configured tasks.
func NewCompiler(tasks map[string]*config.NodeOptions, actions ActionProvider) *Compiler {
	if tasks == nil {
		tasks = map[string]*config.NodeOptions{}
	}
	return &Compiler{tasks: tasks, actions: actions, newID: uuid.NewString}
}

// Build returns the task selected by the fragment's configuration. It
// reports false when the fragment selects no task or an undefined one.
func (c *Compiler) Build(ctx context.Context, f *fragment.Fragment) (*Task, bool, error) {
	logger := ctxlog.FromContext(ctx)
	name := f.ConfigString(TaskKey)
	if name == "" {
		logger.Debug("Fragment does not select a task.", "fragment", f.ID)
		return nil, false, nil
	}
	root, ok := c.tasks[name]
	if !ok {
		logger.Warn("Task not defined in configuration!", "task", name, "fragment", f.ID)
		return nil, false, nil
	}

	if t, ok := c.compiled.Load(name); ok {
		return t.(*Task), true, nil
	}
	v, err, _ := c.group.Do(name, func() (any, error) {
		if t, ok := c.compiled.Load(name); ok {
			return t, nil
		}
		t, err := c.Compile(ctx, name, root)
		if err != nil {
			return nil, err
		}
		c.compiled.Store(name, t)
		return t, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Task), true, nil
}

// Compile builds a Task from its root node options.
func (c *Compiler) Compile(ctx context.Context, name string, root *config.NodeOptions) (*Task, error) {
	logger := ctxlog.FromContext(ctx)
	if root == nil {
		return nil, fmt.Errorf("%w: task '%s' has no root node", ErrConfiguration, name)
	}

	t := &Task{Name: name, nodes: make(map[string]*node.Node)}
	rootID, err := c.compileNode(ctx, t, root, nil)
	if err != nil {
		return nil, err
	}
	t.Root = rootID
	logger.Debug("Task compiled.", "task", name, "node_count", len(t.order))
	return t, nil
}

func (c *Compiler) compileNode(ctx context.Context, t *Task, opts *config.NodeOptions, ancestors []*config.NodeOptions) (string, error) {
	if opts == nil {
		return "", fmt.Errorf("%w: task '%s': empty node reference", ErrConfiguration, t.Name)
	}
	if slices.Contains(ancestors, opts) {
		return "", fmt.Errorf("%w: task '%s': node '%s' points back to its ancestor", ErrConfiguration, t.Name, opts.Name)
	}
	path := append(slices.Clone(ancestors), opts)

	n, err := c.newNode(ctx, t, opts)
	if err != nil {
		return "", err
	}
	t.nodes[n.ID] = n
	t.order = append(t.order, n.ID)

	if n.Kind == node.KindComposite {
		for _, sub := range opts.Subtasks {
			id, err := c.compileNode(ctx, t, sub, path)
			if err != nil {
				return "", err
			}
			n.Nested = append(n.Nested, id)
		}
	}

	for _, transition := range sortedKeys(opts.On) {
		childID, err := c.compileNode(ctx, t, opts.On[transition], path)
		if err != nil {
			return "", err
		}
		switch n.Kind {
		case node.KindSingle:
			n.Transitions[transition] = childID
		case node.KindComposite:
			// Composite successors are checked in newNode.
			if transition == fragment.Success {
				n.OnSuccess = childID
			} else {
				n.OnError = childID
			}
		}
	}
	return n.ID, nil
}

func (c *Compiler) newNode(ctx context.Context, t *Task, opts *config.NodeOptions) (*node.Node, error) {
	id := c.newID()
	label := opts.Name
	if label == "" {
		label = opts.Action
	}

	switch {
	case opts.Action != "" && opts.IsComposite():
		return nil, fmt.Errorf("%w: task '%s': node '%s' declares both an action and subtasks", ErrConfiguration, t.Name, label)

	case opts.IsComposite():
		for transition := range opts.On {
			if transition != fragment.Success && transition != fragment.Error {
				return nil, fmt.Errorf("%w: task '%s': composite node '%s' supports only '%s' and '%s' transitions, got '%s'",
					ErrConfiguration, t.Name, label, fragment.Success, fragment.Error, transition)
			}
		}
		return node.NewComposite(id, label, nil), nil

	case opts.Action != "":
		a, ok, err := c.actions.Get(ctx, opts.Action)
		if err != nil {
			return nil, fmt.Errorf("%w: task '%s': node '%s': %w", ErrConfiguration, t.Name, label, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: task '%s': no provider for action '%s'", ErrConfiguration, t.Name, opts.Action)
		}
		return node.NewSingle(id, label, a, c.operation(opts.Action)), nil

	default:
		if len(opts.On) > 0 {
			return nil, fmt.Errorf("%w: task '%s': node '%s' has transitions but no action or subtasks", ErrConfiguration, t.Name, label)
		}
		return node.NewStub(id, label), nil
	}
}

func (c *Compiler) operation(alias string) node.Operation {
	op := node.Operation{Data: map[string]any{"alias": alias}}
	if opts, ok := c.actions.Options(alias); ok {
		op.Factory = opts.Factory
		if len(opts.Config) > 0 {
			op.Data["actionConfig"] = opts.Config
		}
		if opts.DoAction != "" {
			op.Data["doAction"] = opts.DoAction
		}
	}
	return op
}

func sortedKeys(m map[string]*config.NodeOptions) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
