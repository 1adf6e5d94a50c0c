package core

import (
	"context"

	"go.uber.org/zap"

	"rentcore/pkg/domain"
)

// Workflow is an ordered sequence of named steps executed against the
// service. Each step runs in its own transaction; the runner halts on the
// first failing step and performs no rollback, so entities created by
// completed steps remain committed.
type Workflow struct {
	Name  string
	Steps []WorkflowStep
}

// WorkflowStep is one unit of a workflow. Run receives the shared state so
// identifiers created by earlier steps flow forward.
type WorkflowStep struct {
	Name string
	Run  func(ctx context.Context, state *WorkflowState) error
}

// WorkflowState carries the service handle and identifiers across steps.
type WorkflowState struct {
	svc     *Service
	ids     map[string]string
	created map[EntityType][]string
}

// Service returns the service the workflow runs against.
func (w *WorkflowState) Service() *Service { return w.svc }

// Set stores a named identifier for later steps.
func (w *WorkflowState) Set(key, id string) { w.ids[key] = id }

// Get retrieves an identifier stored by an earlier step.
func (w *WorkflowState) Get(key string) string { return w.ids[key] }

// Record notes a created entity so the workflow result can report it.
func (w *WorkflowState) Record(entity EntityType, id string) {
	w.created[entity] = append(w.created[entity], id)
}

// WorkflowResult reports the outcome of a workflow run.
type WorkflowResult struct {
	Workflow       string                  `json:"workflow"`
	Success        bool                    `json:"success"`
	CompletedSteps []string                `json:"completed_steps"`
	FailedStep     string                  `json:"failed_step,omitempty"`
	Created        map[EntityType][]string `json:"created"`
	Err            error                   `json:"-"`
}

// RunWorkflow executes the workflow's steps in order, halting on the first
// failure. Because steps are independent transactions, a failed run leaves
// the entities of every completed step in place.
func (s *Service) RunWorkflow(ctx context.Context, wf Workflow) WorkflowResult {
	state := &WorkflowState{
		svc:     s,
		ids:     make(map[string]string),
		created: make(map[domain.EntityType][]string),
	}
	result := WorkflowResult{Workflow: wf.Name, Created: state.created}
	for _, step := range wf.Steps {
		if err := step.Run(ctx, state); err != nil {
			s.logger.Warn("workflow halted",
				zap.String("workflow", wf.Name),
				zap.String("step", step.Name),
				zap.Error(err))
			result.FailedStep = step.Name
			result.Err = err
			return result
		}
		result.CompletedSteps = append(result.CompletedSteps, step.Name)
	}
	result.Success = true
	s.logger.Info("workflow completed",
		zap.String("workflow", wf.Name),
		zap.Int("steps", len(result.CompletedSteps)))
	return result
}

// OnboardTenantInput parameterizes the tenant onboarding workflow.
type OnboardTenantInput struct {
	Tenant      User
	UnitID      string
	Application Application
}

// OnboardTenant registers a tenant account and submits their application for
// a unit as one workflow.
func (s *Service) OnboardTenant(ctx context.Context, input OnboardTenantInput) WorkflowResult {
	return s.RunWorkflow(ctx, Workflow{
		Name: "onboard_tenant",
		Steps: []WorkflowStep{
			{
				Name: "create_tenant",
				Run: func(ctx context.Context, state *WorkflowState) error {
					tenant := input.Tenant
					tenant.Role = domain.RoleTenant
					created, _, err := state.svc.CreateUser(ctx, tenant)
					if err != nil {
						return err
					}
					state.Set("tenant", created.ID)
					state.Record(domain.EntityUser, created.ID)
					return nil
				},
			},
			{
				Name: "submit_application",
				Run: func(ctx context.Context, state *WorkflowState) error {
					application := input.Application
					application.UnitID = input.UnitID
					application.TenantID = state.Get("tenant")
					created, _, err := state.svc.SubmitApplication(ctx, application)
					if err != nil {
						return err
					}
					state.Record(domain.EntityApplication, created.ID)
					return nil
				},
			},
		},
	})
}

// SignLeaseInput parameterizes the lease signing workflow.
type SignLeaseInput struct {
	ApplicationID string
	Lease         Lease
}

// SignLease approves an application, creates the lease, and activates it.
// Activation triggers the occupancy cascade on the unit and property.
func (s *Service) SignLease(ctx context.Context, input SignLeaseInput) WorkflowResult {
	return s.RunWorkflow(ctx, Workflow{
		Name: "sign_lease",
		Steps: []WorkflowStep{
			{
				Name: "approve_application",
				Run: func(ctx context.Context, state *WorkflowState) error {
					approved, _, err := state.svc.ApproveApplication(ctx, input.ApplicationID)
					if err != nil {
						return err
					}
					state.Set("unit", approved.UnitID)
					state.Set("tenant", approved.TenantID)
					return nil
				},
			},
			{
				Name: "create_lease",
				Run: func(ctx context.Context, state *WorkflowState) error {
					lease := input.Lease
					lease.UnitID = state.Get("unit")
					lease.TenantID = state.Get("tenant")
					created, _, err := state.svc.CreateLease(ctx, lease)
					if err != nil {
						return err
					}
					state.Set("lease", created.ID)
					state.Record(domain.EntityLease, created.ID)
					return nil
				},
			},
			{
				Name: "activate_lease",
				Run: func(ctx context.Context, state *WorkflowState) error {
					_, _, err := state.svc.ActivateLease(ctx, state.Get("lease"))
					return err
				},
			},
		},
	})
}
