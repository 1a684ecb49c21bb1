package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/memstore"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/pipeline"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/sse"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/testutil"
)

func setupIndentTest(t *testing.T) *gin.Engine {
	t.Helper()

	store := memstore.New()
	pipelines, err := pipeline.NewSet(nil, nil)
	if err != nil {
		t.Fatalf("pipeline set: %v", err)
	}
	hub := sse.NewHub(zap.NewNop())
	svcs := service.NewServices(store.Stores(), pipelines, hub, zap.NewNop())
	handlers := NewHandlers(svcs, hub)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/procurement")
	indents := api.Group("/indents")
	indents.POST("", handlers.Indent.CreateIndent)
	indents.GET("", handlers.Indent.ListIndents)
	indents.GET("/:id", handlers.Indent.GetIndent)
	indents.POST("/:id/submit", handlers.Indent.SubmitIndent)
	indents.POST("/:id/approve", handlers.Approval.Approve)
	indents.POST("/:id/reject", handlers.Approval.Reject)

	return router
}

func createIndentBody() map[string]interface{} {
	return map[string]interface{}{
		"title":      "Lab apparatus",
		"department": "electronics",
		"items": []map[string]interface{}{
			{"item_name": "Oscilloscope probe", "quantity": 5, "approx_value": 25000},
		},
	}
}

func TestIndentCreateAndSubmit(t *testing.T) {
	router := setupIndentTest(t)
	token := testutil.GenerateTestToken("user-001", "Asha Patil", "user_dept")

	w := testutil.DoRequest(router, "POST", "/api/v1/procurement/indents", createIndentBody(), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	id := data["id"].(string)
	if data["status"] != "draft" {
		t.Errorf("new indent status = %v, want draft", data["status"])
	}
	if data["code"] == "" {
		t.Error("indent code should be assigned")
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/procurement/indents/"+id+"/submit", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body = %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["status"] != "pending_hod" {
		t.Errorf("submitted status = %v, want pending_hod", data["status"])
	}
}

func TestIndentRequiresAuth(t *testing.T) {
	router := setupIndentTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/procurement/indents", createIndentBody(), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated create status = %d, want 401", w.Code)
	}
}

func TestApproveEndpointEnforcesRole(t *testing.T) {
	router := setupIndentTest(t)
	deptToken := testutil.GenerateTestToken("user-001", "Asha Patil", "user_dept")
	hodToken := testutil.GenerateTestToken("user-hod", "Prof. Rao", "hod")
	storeToken := testutil.GenerateTestToken("user-store", "Store Keeper", "store")

	w := testutil.DoRequest(router, "POST", "/api/v1/procurement/indents", createIndentBody(), deptToken)
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := data["id"].(string)
	testutil.DoRequest(router, "POST", "/api/v1/procurement/indents/"+id+"/submit", nil, deptToken)

	// store cannot act while the indent waits on hod
	w = testutil.DoRequest(router, "POST", "/api/v1/procurement/indents/"+id+"/approve", nil, storeToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("out-of-turn approve status = %d, want 403", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40301 {
		t.Errorf("error code = %v, want 40301", resp["code"])
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/procurement/indents/"+id+"/approve", nil, hodToken)
	if w.Code != http.StatusOK {
		t.Fatalf("hod approve status = %d, body = %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != "pending_store" {
		t.Errorf("status after hod approve = %v, want pending_store", data["status"])
	}
}

func TestRejectEndpointRequiresRemarks(t *testing.T) {
	router := setupIndentTest(t)
	deptToken := testutil.GenerateTestToken("user-001", "Asha Patil", "user_dept")
	hodToken := testutil.GenerateTestToken("user-hod", "Prof. Rao", "hod")

	w := testutil.DoRequest(router, "POST", "/api/v1/procurement/indents", createIndentBody(), deptToken)
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := data["id"].(string)
	testutil.DoRequest(router, "POST", "/api/v1/procurement/indents/"+id+"/submit", nil, deptToken)

	w = testutil.DoRequest(router, "POST", "/api/v1/procurement/indents/"+id+"/reject",
		map[string]interface{}{"remarks": ""}, hodToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank remarks status = %d, want 400", w.Code)
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/procurement/indents/"+id+"/reject",
		map[string]interface{}{"remarks": "budget exhausted"}, hodToken)
	if w.Code != http.StatusOK {
		t.Fatalf("reject status = %d, body = %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != "rejected" {
		t.Errorf("status = %v, want rejected", data["status"])
	}
}

func TestListIndentsEnvelope(t *testing.T) {
	router := setupIndentTest(t)
	token := testutil.GenerateTestToken("user-001", "Asha Patil", "user_dept")

	for i := 0; i < 3; i++ {
		testutil.DoRequest(router, "POST", "/api/v1/procurement/indents", createIndentBody(), token)
	}

	w := testutil.DoRequest(router, "GET", "/api/v1/procurement/indents?page=1&page_size=2", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 2 {
		t.Errorf("page items = %d, want 2", len(items))
	}
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 3 {
		t.Errorf("total = %v, want 3", pagination["total"])
	}
	if pagination["total_pages"].(float64) != 2 {
		t.Errorf("total pages = %v, want 2", pagination["total_pages"])
	}
}
