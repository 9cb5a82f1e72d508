package services

import (
	"github.com/casbin/casbin/v2"

	"github.com/you/authgate/domain"
)

// enforcerAdapter narrows *casbin.Enforcer to the domain seam so the policy
// service and the tests never depend on the concrete enforcer.
type enforcerAdapter struct {
	e *casbin.Enforcer
}

// WrapEnforcer adapts a live Casbin enforcer to domain.CasbinEnforcer.
func WrapEnforcer(e *casbin.Enforcer) domain.CasbinEnforcer {
	return enforcerAdapter{e: e}
}

func (a enforcerAdapter) AddPolicy(params ...interface{}) (bool, error) {
	return a.e.AddPolicy(params...)
}

func (a enforcerAdapter) RemovePolicy(params ...interface{}) (bool, error) {
	return a.e.RemovePolicy(params...)
}

func (a enforcerAdapter) Enforce(rvals ...interface{}) (bool, error) {
	return a.e.Enforce(rvals...)
}

func (a enforcerAdapter) GetPolicy() ([][]string, error) {
	return a.e.GetPolicy()
}

func (a enforcerAdapter) SavePolicy() error {
	return a.e.SavePolicy()
}

// PolicyServiceImpl implements domain.PolicyService. Every mutation saves
// through to the adapter, so the policy table is the durable source of truth
// across restarts.
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a policy service on the given enforcer seam.
func NewPolicyService(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{enforcer: enforcer}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if _, err := p.enforcer.AddPolicy(role, resource, action); err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	if _, err := p.enforcer.RemovePolicy(role, resource, action); err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}
