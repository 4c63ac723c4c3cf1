package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sincelove/chat-backend/internal/common"
	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/internal/service"
	"github.com/sincelove/chat-backend/pkg/ginutil"
)

// ConversationHandler handles conversation list HTTP requests
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// ListConversations handles GET /api/:id_user/conversations
// @Summary 대화 목록
// @Tags conversations
// @Produce json
// @Param id_user path int true "사용자 id"
// @Param limit query int false "페이지 크기 (기본 10, 최대 100)"
// @Param page query int false "페이지"
// @Param sort query string false "정렬 ({\"updatedAt\":-1} 또는 -updatedAt)"
// @Success 200 {object} ConversationPageResponse
// @Failure 400 {object} common.ErrorBody
// @Router /{id_user}/conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	idUser, err := ginutil.ParamInt64(c, "id_user")
	if !validUserID(c, idUser, err) {
		return
	}

	opts, ok := pageOptions(c, domain.ConversationSortColumns)
	if !ok {
		return
	}

	page, err := h.service.ListForUser(c.Request.Context(), idUser, opts)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to get conversations", err)
		return
	}

	common.PageResponse(c, "conversations", page.Items, pageMeta(page))
}

// LastConversation handles GET /api/conversation/lastone
// @Summary 가장 최근 대화
// @Tags conversations
// @Produce json
// @Param id_user query int true "사용자 id"
// @Success 200 {object} domain.Conversation "없으면 null"
// @Failure 400 {object} common.ErrorBody
// @Router /conversation/lastone [get]
func (h *ConversationHandler) LastConversation(c *gin.Context) {
	idUser, err := ginutil.QueryInt64(c, "id_user")
	if !validUserID(c, idUser, err) {
		return
	}

	conv, err := h.service.LastForUser(c.Request.Context(), idUser)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to get conversation", err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

// OpenConversation handles POST /api/conversation
// @Summary 대화 열기
// @Description 사용자 정보를 새로 받아 대화를 생성하거나 초기화합니다
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body domain.OpenConversationRequest true "참여자"
// @Success 200 {object} domain.Conversation
// @Failure 400 {object} common.ErrorBody
// @Failure 500 {object} common.ErrorBody
// @Router /conversation [post]
func (h *ConversationHandler) OpenConversation(c *gin.Context) {
	var req domain.OpenConversationRequest
	if !bindJSON(c, &req) {
		return
	}

	conv, err := h.service.OpenConversation(c.Request.Context(), req.IDUser, req.IDUserTo)
	if err != nil {
		if errors.Is(err, common.ErrUpstream) {
			common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to get user data", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to open conversation", err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

// GetConversation handles GET /api/conversation/:id
// @Summary 대화 조회
// @Tags conversations
// @Produce json
// @Param id path int true "대화 _id"
// @Success 200 {object} domain.Conversation "없으면 null"
// @Failure 400 {object} common.ErrorBody
// @Router /conversation/{id} [get]
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil || id == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid conversation id", err)
		return
	}

	conv, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to get conversation", err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

// validUserID rejects unparsable and non-positive user ids with a 400
func validUserID(c *gin.Context, id int64, err error) bool {
	if err != nil || id < 1 {
		common.ErrorResponse(c, http.StatusBadRequest, "id_user must be a number and not 0", err)
		return false
	}
	return true
}
