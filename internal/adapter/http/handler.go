package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/errandly/errandly-backend/internal/domain"
	"github.com/errandly/errandly-backend/internal/usecase/acceptance"
	"github.com/errandly/errandly-backend/internal/usecase/bids"
	"github.com/errandly/errandly-backend/internal/usecase/chat"
	"github.com/errandly/errandly-backend/internal/usecase/notify"
	"github.com/errandly/errandly-backend/internal/usecase/settlement"
	"github.com/errandly/errandly-backend/internal/usecase/tasks"
)

// Handler is the JSON facade over the marketplace use cases. Identity
// comes from the X-User-Id header; upstream auth middleware is expected
// to have verified it.
type Handler struct {
	tasks      *tasks.Service
	bids       *bids.Service
	acceptance *acceptance.Coordinator
	settlement *settlement.Engine
	chat       *chat.Service
	notify     *notify.Dispatcher
	zapLogger  *zap.Logger
}

func SetupHandlers(r *gin.Engine, ts *tasks.Service, bs *bids.Service, ac *acceptance.Coordinator, se *settlement.Engine, cs *chat.Service, nd *notify.Dispatcher, zapLogger *zap.Logger) {
	h := &Handler{
		tasks:      ts,
		bids:       bs,
		acceptance: ac,
		settlement: se,
		chat:       cs,
		notify:     nd,
		zapLogger:  zapLogger,
	}

	r.POST("/tasks", h.CreateTask)
	r.GET("/tasks/open", h.ListOpenTasks)
	r.GET("/tasks/mine", h.ListMyTasks)
	r.GET("/tasks/:id", h.GetTask)
	r.DELETE("/tasks/:id", h.DeleteTask)
	r.POST("/tasks/:id/start", h.StartTask)
	r.POST("/tasks/:id/bids", h.PlaceBid)
	r.GET("/tasks/:id/bids", h.ListBids)
	r.POST("/tasks/:id/accept", h.AcceptBid)
	r.POST("/tasks/:id/settle", h.SettleTask)
	r.GET("/tasks/:id/transactions", h.ListTransactions)
	r.POST("/tasks/:id/messages", h.SendMessage)
	r.GET("/tasks/:id/messages", h.ListMessages)
	r.GET("/jobs", h.ListMyJobs)
	r.GET("/wallet", h.GetWallet)
	r.GET("/notifications", h.ListNotifications)
	r.POST("/notifications/:id/read", h.MarkNotificationRead)
}

// requester extracts the caller identity from the X-User-Id header
func (h *Handler) requester(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader("X-User-Id"))
	if err != nil || id == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid X-User-Id header"})
		return uuid.Nil, false
	}
	return id, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps the domain error taxonomy onto HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTransientStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store is temporarily unavailable, retry"})
	default:
		h.zapLogger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

type taskResponse struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Location           string     `json:"location"`
	Budget             string     `json:"budget"`
	Status             string     `json:"status"`
	AssignedTaskerID   *uuid.UUID `json:"assigned_tasker_id,omitempty"`
	AssignedTaskerName string     `json:"assigned_tasker_name,omitempty"`
	AgreedPrice        *string    `json:"agreed_price,omitempty"`
	BidCount           int        `json:"bid_count"`
	PaymentStatus      string     `json:"payment_status"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:                 t.ID,
		OwnerID:            t.OwnerID,
		Title:              t.Title,
		Description:        t.Description,
		Category:           t.Category,
		Location:           t.Location,
		Budget:             t.Budget.StringFixed(2),
		Status:             string(t.Status),
		AssignedTaskerID:   t.AssignedTaskerID,
		AssignedTaskerName: t.AssignedTaskerName,
		BidCount:           t.BidCount,
		PaymentStatus:      string(t.PaymentStatus),
		CreatedAt:          t.CreatedAt,
		CompletedAt:        t.CompletedAt,
	}
	if t.AgreedPrice != nil {
		price := t.AgreedPrice.StringFixed(2)
		resp.AgreedPrice = &price
	}
	return resp
}

func toTaskResponses(ts []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTaskResponse(t))
	}
	return out
}

type bidResponse struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"task_id"`
	TaskerID   uuid.UUID `json:"tasker_id"`
	TaskerName string    `json:"tasker_name"`
	Amount     string    `json:"amount"`
	Proposal   string    `json:"proposal"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toBidResponse(b *domain.Bid) bidResponse {
	return bidResponse{
		ID:         b.ID,
		TaskID:     b.TaskID,
		TaskerID:   b.TaskerID,
		TaskerName: b.TaskerName,
		Amount:     b.Amount.StringFixed(2),
		Proposal:   b.Proposal,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
	}
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	Location    string `json:"location"`
	Budget      string `json:"budget" binding:"required"`
}

func (h *Handler) CreateTask(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	budget, err := decimal.NewFromString(req.Budget)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget"})
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), tasks.CreateTaskInput{
		OwnerID:     requesterID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Budget:      budget,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.zapLogger.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("owner_id", requesterID.String()),
	)
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *Handler) ListOpenTasks(c *gin.Context) {
	list, err := h.tasks.ListOpenTasks(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": toTaskResponses(list)})
}

func (h *Handler) ListMyTasks(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	list, err := h.tasks.ListTasksByOwner(c.Request.Context(), requesterID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": toTaskResponses(list)})
}

// ListMyJobs returns the caller's assigned work. The optional status
// query repeats for each wanted status; empty means any.
func (h *Handler) ListMyJobs(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	var statuses []domain.TaskStatus
	for _, s := range c.QueryArray("status") {
		statuses = append(statuses, domain.TaskStatus(s))
	}
	list, err := h.tasks.ListTasksByAssignee(c.Request.Context(), requesterID, statuses)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": toTaskResponses(list)})
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *Handler) DeleteTask(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(c.Request.Context(), id, requesterID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) StartTask(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.tasks.StartTask(c.Request.Context(), id, requesterID); err != nil {
		h.writeError(c, err)
		return
	}
	task, err := h.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

type placeBidRequest struct {
	TaskerName string `json:"tasker_name" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	Proposal   string `json:"proposal"`
}

func (h *Handler) PlaceBid(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	bid, err := h.bids.PlaceBid(c.Request.Context(), bids.PlaceBidInput{
		TaskID:     taskID,
		TaskerID:   requesterID,
		TaskerName: req.TaskerName,
		Amount:     amount,
		Proposal:   req.Proposal,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.zapLogger.Info("bid placed",
		zap.String("bid_id", bid.ID.String()),
		zap.String("task_id", taskID.String()),
	)
	c.JSON(http.StatusCreated, toBidResponse(bid))
}

func (h *Handler) ListBids(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.bids.ListBidsForTask(c.Request.Context(), taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]bidResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBidResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"bids": out})
}

type acceptBidRequest struct {
	BidID uuid.UUID `json:"bid_id" binding:"required"`
}

func (h *Handler) AcceptBid(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	var req acceptBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.acceptance.AcceptBid(c.Request.Context(), taskID, req.BidID, requesterID); err != nil {
		h.writeError(c, err)
		return
	}

	h.zapLogger.Info("bid accepted",
		zap.String("task_id", taskID.String()),
		zap.String("bid_id", req.BidID.String()),
	)
	task, err := h.tasks.GetTask(c.Request.Context(), taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

type settleTaskRequest struct {
	Method string `json:"method" binding:"required"`
}

type transactionResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Amount    string    `json:"amount"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransactionResponse(t *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		TaskID:    t.TaskID,
		Amount:    t.Amount.StringFixed(2),
		Method:    t.Method,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func (h *Handler) SettleTask(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	var req settleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.settlement.SettleTask(c.Request.Context(), taskID, requesterID, req.Method)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.zapLogger.Info("task settled",
		zap.String("task_id", taskID.String()),
		zap.String("transaction_id", record.ID.String()),
		zap.String("amount", record.Amount.StringFixed(2)),
	)
	c.JSON(http.StatusOK, toTransactionResponse(record))
}

func (h *Handler) ListTransactions(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.settlement.TransactionsForTask(c.Request.Context(), taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransactionResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

type sendMessageRequest struct {
	SenderName string `json:"sender_name" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

type messageResponse struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"task_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:         m.ID,
		TaskID:     m.TaskID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

func (h *Handler) SendMessage(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chat.SendMessage(c.Request.Context(), chat.SendMessageInput{
		TaskID:     taskID,
		SenderID:   requesterID,
		SenderName: req.SenderName,
		Body:       req.Body,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (h *Handler) ListMessages(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.chat.MessagesForTask(c.Request.Context(), taskID, requesterID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]messageResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (h *Handler) GetWallet(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	wallet, err := h.settlement.WalletFor(c.Request.Context(), requesterID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasker_id":         wallet.TaskerID,
		"balance":           wallet.Balance.StringFixed(2),
		"lifetime_earnings": wallet.LifetimeEarnings.StringFixed(2),
		"completed_jobs":    wallet.CompletedJobs,
	})
}

type notificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	RelatedID uuid.UUID `json:"related_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) ListNotifications(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	list, err := h.notify.Inbox(c.Request.Context(), requesterID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Body:      n.Body,
			RelatedID: n.RelatedID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	requesterID, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.notify.MarkRead(c.Request.Context(), id, requesterID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
