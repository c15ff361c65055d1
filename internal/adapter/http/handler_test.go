package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/errandly/errandly-backend/internal/adapter/repository/memory"
	"github.com/errandly/errandly-backend/internal/usecase/acceptance"
	"github.com/errandly/errandly-backend/internal/usecase/bids"
	"github.com/errandly/errandly-backend/internal/usecase/chat"
	"github.com/errandly/errandly-backend/internal/usecase/notify"
	"github.com/errandly/errandly-backend/internal/usecase/settlement"
	"github.com/errandly/errandly-backend/internal/usecase/tasks"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	logger := zap.NewNop()
	dispatcher := notify.NewDispatcher(store, nil, logger)

	r := gin.New()
	SetupHandlers(r,
		tasks.NewService(store),
		bids.NewService(store, dispatcher),
		acceptance.NewCoordinator(store, dispatcher),
		settlement.NewEngine(store, dispatcher, settlement.DefaultFeeRate),
		chat.NewService(store),
		dispatcher,
		logger,
	)
	return r
}

func doJSON(r *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTask(t *testing.T, r *gin.Engine, ownerID, budget string) string {
	t.Helper()
	body := fmt.Sprintf(`{"title":"Grocery run","description":"Weekly shop","category":"Errands","location":"Lagos","budget":%q}`, budget)
	w := doJSON(r, http.MethodPost, "/tasks", ownerID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["id"].(string)
}

func placeBid(t *testing.T, r *gin.Engine, taskID, taskerID, amount string) string {
	t.Helper()
	body := fmt.Sprintf(`{"tasker_name":"Ada","amount":%q,"proposal":"I can do this today"}`, amount)
	w := doJSON(r, http.MethodPost, "/tasks/"+taskID+"/bids", taskerID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["id"].(string)
}

func TestCreateTask(t *testing.T) {
	r := newTestRouter(t)
	ownerID := uuid.NewString()

	w := doJSON(r, http.MethodPost, "/tasks", ownerID,
		`{"title":"Grocery run","description":"Weekly shop","category":"Errands","location":"Lagos","budget":"5000"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Open", resp["status"])
	assert.Equal(t, "Unpaid", resp["payment_status"])
	assert.Equal(t, "5000.00", resp["budget"])
	assert.Equal(t, ownerID, resp["owner_id"])
}

func TestCreateTask_RequiresIdentity(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/tasks", "",
		`{"title":"Grocery run","category":"Errands","budget":"5000"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateTask_InvalidBudget(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/tasks", uuid.NewString(),
		`{"title":"Grocery run","description":"Weekly shop","category":"Errands","location":"Lagos","budget":"-5"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTask_NotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/tasks/"+uuid.NewString(), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTask_ForbiddenForNonOwner(t *testing.T) {
	r := newTestRouter(t)
	taskID := createTask(t, r, uuid.NewString(), "5000")

	w := doJSON(r, http.MethodDelete, "/tasks/"+taskID, uuid.NewString(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAcceptAndSettleFlow(t *testing.T) {
	r := newTestRouter(t)
	ownerID := uuid.NewString()
	taskerID := uuid.NewString()

	taskID := createTask(t, r, ownerID, "5000")
	bidID := placeBid(t, r, taskID, taskerID, "4500")

	w := doJSON(r, http.MethodPost, "/tasks/"+taskID+"/accept", ownerID,
		fmt.Sprintf(`{"bid_id":%q}`, bidID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var taskResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &taskResp))
	assert.Equal(t, "Assigned", taskResp["status"])
	assert.Equal(t, "4500.00", taskResp["agreed_price"])

	w = doJSON(r, http.MethodPost, "/tasks/"+taskID+"/settle", ownerID, `{"method":"card"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var txResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txResp))
	assert.Equal(t, "4725.00", txResp["amount"])
	assert.Equal(t, "Success", txResp["status"])

	// second settle must conflict and move no funds
	w = doJSON(r, http.MethodPost, "/tasks/"+taskID+"/settle", ownerID, `{"method":"card"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodGet, "/wallet", taskerID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var walletResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &walletResp))
	assert.Equal(t, "4500.00", walletResp["balance"])
	assert.Equal(t, float64(1), walletResp["completed_jobs"])
}

func TestAcceptBid_ConflictWhenAlreadyAssigned(t *testing.T) {
	r := newTestRouter(t)
	ownerID := uuid.NewString()

	taskID := createTask(t, r, ownerID, "5000")
	first := placeBid(t, r, taskID, uuid.NewString(), "4500")
	second := placeBid(t, r, taskID, uuid.NewString(), "4800")

	w := doJSON(r, http.MethodPost, "/tasks/"+taskID+"/accept", ownerID,
		fmt.Sprintf(`{"bid_id":%q}`, first))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/tasks/"+taskID+"/accept", ownerID,
		fmt.Sprintf(`{"bid_id":%q}`, second))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPlaceBid_ClosedTask(t *testing.T) {
	r := newTestRouter(t)
	ownerID := uuid.NewString()

	taskID := createTask(t, r, ownerID, "5000")
	bidID := placeBid(t, r, taskID, uuid.NewString(), "4500")

	w := doJSON(r, http.MethodPost, "/tasks/"+taskID+"/accept", ownerID,
		fmt.Sprintf(`{"bid_id":%q}`, bidID))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/tasks/"+taskID+"/bids", uuid.NewString(),
		`{"tasker_name":"Late","amount":"4000","proposal":"Still interested"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChatFlow(t *testing.T) {
	r := newTestRouter(t)
	ownerID := uuid.NewString()
	taskerID := uuid.NewString()

	taskID := createTask(t, r, ownerID, "5000")
	bidID := placeBid(t, r, taskID, taskerID, "4500")

	w := doJSON(r, http.MethodPost, "/tasks/"+taskID+"/accept", ownerID,
		fmt.Sprintf(`{"bid_id":%q}`, bidID))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/tasks/"+taskID+"/messages", taskerID,
		`{"sender_name":"Ada","body":"On my way"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/tasks/"+taskID+"/messages", ownerID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []map[string]interface{} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "On my way", resp.Messages[0]["body"])
	assert.Equal(t, taskerID, resp.Messages[0]["sender_id"])

	// the conversation is private to its participants
	w = doJSON(r, http.MethodGet, "/tasks/"+taskID+"/messages", uuid.NewString(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/tasks/"+taskID+"/messages", uuid.NewString(),
		`{"sender_name":"Stranger","body":"hello"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNotificationsFlow(t *testing.T) {
	r := newTestRouter(t)
	ownerID := uuid.NewString()

	taskID := createTask(t, r, ownerID, "5000")
	placeBid(t, r, taskID, uuid.NewString(), "4500")

	w := doJSON(r, http.MethodGet, "/notifications", ownerID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notifications []map[string]interface{} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "BidReceived", resp.Notifications[0]["type"])
	assert.Equal(t, false, resp.Notifications[0]["read"])

	notifID := resp.Notifications[0]["id"].(string)

	// only the recipient may mark it read
	w = doJSON(r, http.MethodPost, "/notifications/"+notifID+"/read", uuid.NewString(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/notifications/"+notifID+"/read", ownerID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListOpenTasks(t *testing.T) {
	r := newTestRouter(t)
	createTask(t, r, uuid.NewString(), "5000")
	createTask(t, r, uuid.NewString(), "3000")

	w := doJSON(r, http.MethodGet, "/tasks/open", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tasks []map[string]interface{} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Tasks, 2)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(1, 2).Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	userID := uuid.NewString()
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := doJSON(r, http.MethodGet, "/ping", userID, "")
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
