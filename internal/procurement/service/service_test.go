package service_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/memstore"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/pipeline"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// recorder captures published domain events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []service.Event
}

func (r *recorder) Publish(e service.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) byType(eventType string) []service.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []service.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	svcs   *service.Services
	store  *memstore.Store
	events *recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	pipelines, err := pipeline.NewSet(nil, nil)
	if err != nil {
		t.Fatalf("pipeline set: %v", err)
	}
	events := &recorder{}
	svcs := service.NewServices(store.Stores(), pipelines, events, zap.NewNop())
	return &testEnv{svcs: svcs, store: store, events: events}
}

func actor(role string) service.Actor {
	return service.Actor{UserID: "user-" + role, Name: "Test " + role, Role: role}
}

// seedVendor registers an active vendor and returns it.
func seedVendor(t *testing.T, env *testEnv, name string) *entity.Vendor {
	t.Helper()
	v, err := env.svcs.Vendor.Register(context.Background(), &service.RegisterVendorRequest{
		Name:       name,
		Categories: []string{"lab-equipment"},
	})
	if err != nil {
		t.Fatalf("seed vendor %s: %v", name, err)
	}
	return v
}

// seedIndent creates and submits an indent so it sits at pending_hod.
func seedIndent(t *testing.T, env *testEnv) *entity.Indent {
	t.Helper()
	ctx := context.Background()
	ind, err := env.svcs.Indent.Create(ctx, actor("user_dept"), &service.CreateIndentRequest{
		Title:      "Lab apparatus",
		Department: "electronics",
		Items: []service.CreateIndentItem{
			{ItemName: "Oscilloscope probe", Quantity: 5, ApproxValue: 25000},
			{ItemName: "Function generator", Quantity: 1, ApproxValue: 5000},
		},
	})
	if err != nil {
		t.Fatalf("seed indent: %v", err)
	}
	ind, err = env.svcs.Indent.Submit(ctx, ind.ID, actor("user_dept"))
	if err != nil {
		t.Fatalf("submit indent: %v", err)
	}
	return ind
}

// approveFully walks the indent through every pipeline stage.
func approveFully(t *testing.T, env *testEnv, indentID string) *entity.Indent {
	t.Helper()
	ctx := context.Background()
	var ind *entity.Indent
	var err error
	for _, stage := range pipeline.DefaultStages {
		ind, err = env.svcs.Approval.Approve(ctx, indentID, actor(stage))
		if err != nil {
			t.Fatalf("approve at %s: %v", stage, err)
		}
	}
	if ind.Status != entity.IndentStatusApproved {
		t.Fatalf("indent status after full chain = %s, want approved", ind.Status)
	}
	return ind
}
