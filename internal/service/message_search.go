package service

import (
	"context"
	"time"

	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/pkg/elasticsearch"
)

// MessageIndex full-text index of chat messages
type MessageIndex interface {
	Index(ctx context.Context, msg *domain.Message) error
	Remove(ctx context.Context, messageID string) error
	// Search returns the matching message ids of one page, in rank order, and the total hit count
	Search(ctx context.Context, room, text string, opts domain.PageOptions) ([]string, int64, error)
}

// SearchBackend the subset of the Elasticsearch client used by the index
type SearchBackend interface {
	IndexDocument(ctx context.Context, index, docID string, body interface{}) error
	DeleteDocument(ctx context.Context, index, docID string) error
	Search(ctx context.Context, index string, query map[string]interface{}, from, size int) (*elasticsearch.SearchResponse, error)
}

type messageDocument struct {
	CreatedAt time.Time `json:"created_at"`
	Room      string    `json:"room"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IDUser    int64     `json:"id_user"`
	IDUserTo  int64     `json:"id_user_to"`
}

// MessageIndexMapping mapping of the message index
var MessageIndexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"created_at": map[string]interface{}{"type": "date"},
			"room":       map[string]interface{}{"type": "keyword"},
			"type":       map[string]interface{}{"type": "keyword"},
			"message":    map[string]interface{}{"type": "text"},
			"id_user":    map[string]interface{}{"type": "long"},
			"id_user_to": map[string]interface{}{"type": "long"},
		},
	},
}

type esMessageIndex struct {
	backend SearchBackend
	index   string
}

// NewMessageIndex creates a MessageIndex backed by Elasticsearch
func NewMessageIndex(backend SearchBackend, index string) MessageIndex {
	return &esMessageIndex{backend: backend, index: index}
}

func (i *esMessageIndex) Index(ctx context.Context, msg *domain.Message) error {
	return i.backend.IndexDocument(ctx, i.index, msg.MessageID, messageDocument{
		CreatedAt: msg.CreatedAt,
		Room:      msg.Room,
		Type:      string(msg.Type),
		Message:   msg.Content,
		IDUser:    msg.IDUser,
		IDUserTo:  msg.IDUserTo,
	})
}

func (i *esMessageIndex) Remove(ctx context.Context, messageID string) error {
	return i.backend.DeleteDocument(ctx, i.index, messageID)
}

func (i *esMessageIndex) Search(ctx context.Context, room, text string, opts domain.PageOptions) ([]string, int64, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"room": room}},
				},
				"must": []interface{}{
					map[string]interface{}{"match": map[string]interface{}{"message": text}},
				},
			},
		},
	}
	if sort := searchSort(opts.Sort); len(sort) > 0 {
		query["sort"] = sort
	}

	resp, err := i.backend.Search(ctx, i.index, query, opts.Offset(), opts.Limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		ids = append(ids, h.ID)
	}
	return ids, resp.Total, nil
}

// searchSort maps sort columns onto indexed fields; others keep relevance order
func searchSort(fields []domain.SortField) []interface{} {
	var sort []interface{}
	for _, f := range fields {
		if f.Column != "created_at" {
			continue
		}
		order := "asc"
		if f.Desc {
			order = "desc"
		}
		sort = append(sort, map[string]interface{}{"created_at": map[string]interface{}{"order": order}})
	}
	return sort
}
