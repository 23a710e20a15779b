package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voicedesk/internal/calllog"
	"voicedesk/internal/reporting"
	"voicedesk/internal/voiceplatform"
	"voicedesk/pkg/logger"
	"voicedesk/pkg/utils"
)

// callSlotTTL caps how long a crashed or lost call holds a concurrency slot
// before Redis reclaims it.
const callSlotTTL = 2 * time.Hour

// CallSlotKey is the Redis key holding an org's in-flight outbound call
// count. Exported so the webhook layer releases the same counter.
func CallSlotKey(orgID string) string { return "callcap:" + orgID }

type createCallRequest struct {
	AssistantID    string `json:"assistant_id"`
	PhoneNumberID  string `json:"phone_number_id"`
	Type           string `json:"type"`
	CustomerNumber string `json:"customer_number"`
}

// CreateCall handles POST /v1/calls. Outbound calls pass the per-org
// concurrency cap before the provider is asked to dial.
func (h Handlers) CreateCall(c *gin.Context) {
	userID, orgID, ok := identity(c)
	if !ok {
		return
	}
	var req createCallRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.AssistantID == "" {
		respondError(c, http.StatusBadRequest, "invalid_argument", "assistant_id required")
		return
	}
	if req.Type == "" {
		req.Type = calllog.CallTypeWeb
	}
	if req.Type != calllog.CallTypeWeb && req.Type != calllog.CallTypeOutbound {
		respondError(c, http.StatusBadRequest, "invalid_argument", "type must be web or outbound")
		return
	}
	if req.Type == calllog.CallTypeOutbound && req.CustomerNumber == "" {
		respondError(c, http.StatusBadRequest, "invalid_argument", "customer_number required for outbound calls")
		return
	}

	// Ownership check before spending provider quota.
	if _, err := h.Assistants.Get(c.Request.Context(), userID, req.AssistantID); err != nil {
		respondServiceError(c, err)
		return
	}

	holdingSlot := false
	if req.Type == calllog.CallTypeOutbound {
		acquired, err := utils.AcquireCallSlot(c.Request.Context(), h.Redis, CallSlotKey(orgID), h.MaxConcurrentCalls, callSlotTTL)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if !acquired {
			respondError(c, http.StatusTooManyRequests, "too_many_calls", "concurrent call limit reached")
			return
		}
		holdingSlot = true
	}
	releaseSlot := func() {
		if holdingSlot {
			if err := utils.ReleaseCallSlot(c.Request.Context(), h.Redis, CallSlotKey(orgID)); err != nil {
				logger.FromGin(c).Warn("release call slot", "org_id", orgID, "err", err)
			}
		}
	}

	platformReq := voiceplatform.CallRequest{
		AssistantID:   req.AssistantID,
		PhoneNumberID: req.PhoneNumberID,
		Type:          req.Type,
	}
	if req.CustomerNumber != "" {
		platformReq.Customer = &voiceplatform.CallCustomer{Number: req.CustomerNumber}
	}

	remote, err := h.Platform.CreateCall(c.Request.Context(), platformReq)
	if err != nil {
		releaseSlot()
		respondServiceError(c, err)
		return
	}

	now := time.Now().UTC()
	row := &calllog.CallLog{
		ID:             uuid.NewString(),
		OrgID:          orgID,
		CallID:         remote.ID,
		Type:           req.Type,
		Status:         calllog.StatusOngoing,
		StartedAt:      &now,
		CustomerNumber: req.CustomerNumber,
		AssistantID:    req.AssistantID,
		EventRank:      calllog.EventCallStarted.Rank(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.CallLogs.Insert(c.Request.Context(), row); err != nil {
		// The call is live upstream; webhooks will converge the row. Keep the
		// slot held so the cap still counts the call.
		logger.FromGin(c).Error("persist call row", "call_id", remote.ID, "err", err)
	}
	respondData(c, http.StatusCreated, row)
}

// ListCalls handles GET /v1/calls with from/to/assistant_id/type/limit query
// parameters.
func (h Handlers) ListCalls(c *gin.Context) {
	_, orgID, ok := identity(c)
	if !ok {
		return
	}

	filter := calllog.ListFilter{
		AssistantID: c.Query("assistant_id"),
		Type:        c.Query("type"),
	}
	var timeErr bool
	filter.From, timeErr = parseTimeParam(c, "from")
	if timeErr {
		return
	}
	filter.To, timeErr = parseTimeParam(c, "to")
	if timeErr {
		return
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "invalid_argument", "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	rows, err := h.CallLogs.List(c.Request.Context(), orgID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

// GetCall handles GET /v1/calls/:call_id.
func (h Handlers) GetCall(c *gin.Context) {
	_, orgID, ok := identity(c)
	if !ok {
		return
	}
	row, found, err := h.CallLogs.FindByCallID(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !found || row.OrgID != orgID {
		respondError(c, http.StatusNotFound, "not_found", "call not found")
		return
	}
	respondData(c, http.StatusOK, row)
}

// CallsSummary handles GET /v1/calls/summary.
func (h Handlers) CallsSummary(c *gin.Context) {
	_, orgID, ok := identity(c)
	if !ok {
		return
	}
	req := reporting.CallsSummaryRequest{
		OrgID:       orgID,
		AssistantID: c.Query("assistant_id"),
	}
	var timeErr bool
	req.Range.From, timeErr = parseTimeParam(c, "from")
	if timeErr {
		return
	}
	req.Range.To, timeErr = parseTimeParam(c, "to")
	if timeErr {
		return
	}

	sum, err := h.Reports.CallsSummary(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, sum)
}

// parseTimeParam reads an RFC 3339 query parameter. The bool is true when the
// value was present but malformed; the error response is already written.
func parseTimeParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_argument", name+" must be RFC 3339")
		return time.Time{}, true
	}
	return t, false
}
