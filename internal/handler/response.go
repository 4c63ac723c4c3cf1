package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sincelove/chat-backend/internal/common"
	"github.com/sincelove/chat-backend/internal/domain"
)

// CreatedMessageResponse body of a successful POST /api/message
type CreatedMessageResponse struct {
	Message *domain.Message `json:"message"`
}

// DeletedMessageResponse body of DELETE /api/message/:id; Data is null when nothing was deleted
type DeletedMessageResponse struct {
	Success bool            `json:"success"`
	Data    *domain.Message `json:"data"`
}

// StatusMessageResponse plain confirmation body
type StatusMessageResponse struct {
	Message string `json:"message"`
}

// MessagePageResponse documents the paginated message list
type MessagePageResponse struct {
	Messages []*domain.Message `json:"messages"`
	common.Page
}

// ConversationPageResponse documents the paginated conversation list
type ConversationPageResponse struct {
	Conversations []*domain.Conversation `json:"conversations"`
	common.Page
}

// pageOptions parses limit/page/sort, writing a 400 on bad input
func pageOptions(c *gin.Context, columns map[string]string) (domain.PageOptions, bool) {
	opts, err := domain.ParsePageOptions(c.Query("limit"), c.Query("page"), c.Query("sort"), columns)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
		return opts, false
	}
	return opts, true
}

func pageMeta[T any](p *domain.Page[T]) common.Page {
	return common.Page{
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		Limit:       p.Limit,
	}
}
