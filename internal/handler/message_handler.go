package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sincelove/chat-backend/internal/common"
	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/internal/service"
)

// MessageHandler handles chat message HTTP requests
type MessageHandler struct {
	messages      service.MessageService
	conversations service.ConversationService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messages service.MessageService, conversations service.ConversationService) *MessageHandler {
	return &MessageHandler{messages: messages, conversations: conversations}
}

// ListMessages handles GET /api/message/:room
// @Summary 채팅방 메시지 목록
// @Tags messages
// @Produce json
// @Param room path string true "채팅방 (chat{max}_{min})"
// @Param limit query int false "페이지 크기 (기본 10, 최대 100)"
// @Param page query int false "페이지"
// @Param sort query string false "정렬 ({\"createdAt\":-1} 또는 -createdAt)"
// @Success 200 {object} MessagePageResponse
// @Failure 400 {object} common.ErrorBody
// @Router /message/{room} [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	opts, ok := pageOptions(c, domain.MessageSortColumns)
	if !ok {
		return
	}

	page, err := h.messages.List(c.Request.Context(), c.Param("room"), opts)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to get messages", err)
		return
	}

	common.PageResponse(c, "messages", page.Items, pageMeta(page))
}

// SearchMessages handles GET /api/message/:room/search
// @Summary 채팅방 메시지 검색
// @Tags messages
// @Produce json
// @Param room path string true "채팅방"
// @Param text query string true "검색어"
// @Param limit query int false "페이지 크기"
// @Param page query int false "페이지"
// @Param sort query string false "정렬"
// @Success 200 {object} MessagePageResponse
// @Failure 400 {object} common.ErrorBody
// @Router /message/{room}/search [get]
func (h *MessageHandler) SearchMessages(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "text is required", nil)
		return
	}

	opts, ok := pageOptions(c, domain.MessageSortColumns)
	if !ok {
		return
	}

	page, err := h.messages.Search(c.Request.Context(), c.Param("room"), text, opts)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to search messages", err)
		return
	}

	common.PageResponse(c, "messages", page.Items, pageMeta(page))
}

// CreateMessage handles POST /api/message
// @Summary 메시지 전송
// @Description 메시지를 저장하고 양쪽 참여자의 대화 목록을 갱신합니다
// @Tags messages
// @Accept json
// @Produce json
// @Param request body domain.CreateMessageRequest true "메시지"
// @Success 201 {object} CreatedMessageResponse
// @Failure 400 {object} common.ErrorBody
// @Failure 500 {object} common.ErrorBody
// @Router /message [post]
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req domain.CreateMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), req.ToMessage())
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to create message", err)
		return
	}

	c.JSON(http.StatusCreated, CreatedMessageResponse{Message: msg})
}

// DeleteMessage handles DELETE /api/message/:id
// @Summary 메시지 삭제
// @Description 존재하지 않는 id도 성공으로 응답합니다 (data: null)
// @Tags messages
// @Produce json
// @Param id path string true "메시지 id"
// @Success 200 {object} DeletedMessageResponse
// @Failure 500 {object} common.ErrorBody
// @Router /message/{id} [delete]
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	deleted, err := h.messages.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying to delete message", err)
		return
	}

	c.JSON(http.StatusOK, DeletedMessageResponse{Success: true, Data: deleted})
}

// MarkRead handles POST /api/chat/read
// @Summary 읽음 처리
// @Tags messages
// @Accept json
// @Produce json
// @Param request body domain.ReadReceiptRequest true "읽음 처리 대상"
// @Success 200 {object} StatusMessageResponse
// @Failure 400 {object} common.ErrorBody
// @Failure 500 {object} common.ErrorBody
// @Router /chat/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req domain.ReadReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.conversations.MarkRead(c.Request.Context(), req.Room, req.IDUser, req.IDUserTo); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Error trying setting as read", err)
		return
	}

	c.JSON(http.StatusOK, StatusMessageResponse{Message: "Succesfully updated!"})
}
