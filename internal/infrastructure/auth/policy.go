package auth

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

// Actions checked by the policy
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionImport = "import"
)

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// builtinPolicy: viewers read, editors also create, update and import, admins do everything
var builtinPolicy = [][]string{
	{"viewer", "*", ActionRead},
	{"editor", "*", ActionCreate},
	{"editor", "*", ActionUpdate},
	{"editor", "*", ActionImport},
	{"admin", "*", "*"},
}

var builtinRoles = [][]string{
	{"editor", "viewer"},
	{"admin", "editor"},
}

// Policy decides which role may perform which action on which entity
type Policy struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

// NewPolicy loads the policy CSV at path, or the built-in policy when path is empty
func NewPolicy(path string) (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid policy model: %w", err)
	}

	if path != "" {
		enf, err := casbin.NewEnforcer(m, fileadapter.NewAdapter(path))
		if err != nil {
			return nil, fmt.Errorf("auth: failed to load policy %s: %w", path, err)
		}
		return &Policy{enforcer: enf}, nil
	}

	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to initialize enforcer: %w", err)
	}
	if _, err := enf.AddPolicies(builtinPolicy); err != nil {
		return nil, err
	}
	if _, err := enf.AddGroupingPolicies(builtinRoles); err != nil {
		return nil, err
	}
	return &Policy{enforcer: enf}, nil
}

// HasPermission reports whether role may perform action on entity
func (p *Policy) HasPermission(role, entity, action string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ok, err := p.enforcer.Enforce(role, entity, action)
	if err != nil {
		return false, fmt.Errorf("auth: enforce failed: %w", err)
	}
	return ok, nil
}
