package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Actions []*actionBlock `hcl:"action,block"`
	Tasks   []*taskBlock   `hcl:"task,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

// actionBlock is `action "<alias>" { ... }`.
type actionBlock struct {
	Alias    string         `hcl:"alias,label"`
	Factory  string         `hcl:"factory"`
	Config   hcl.Expression `hcl:"config,optional"`
	DoAction string         `hcl:"do_action,optional"`
	DefRange hcl.Range      `hcl:",def_range"`
}

// taskBlock is `task "<name>" { root = "..." node "..." { ... } }`.
type taskBlock struct {
	Name     string       `hcl:"name,label"`
	Root     string       `hcl:"root"`
	Nodes    []*nodeBlock `hcl:"node,block"`
	DefRange hcl.Range    `hcl:",def_range"`
}

// nodeBlock is one vertex of a task. Node references are by name and are
// resolved after the whole task has been read.
type nodeBlock struct {
	Name     string            `hcl:"name,label"`
	Action   string            `hcl:"action,optional"`
	Subtasks []string          `hcl:"subtasks,optional"`
	On       map[string]string `hcl:"on,optional"`
}
