package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// SortField a single ORDER BY term
type SortField struct {
	Column string
	Desc   bool
}

// PageOptions limit/page/sort of a paginated query
type PageOptions struct {
	Sort  []SortField
	Limit int
	Page  int
}

// Offset of the first row of the page
func (o PageOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// TotalPages for a total row count
func (o PageOptions) TotalPages(total int64) int {
	if o.Limit <= 0 || total == 0 {
		return 1
	}
	return int((total + int64(o.Limit) - 1) / int64(o.Limit))
}

// ParsePageOptions parses the limit, page and sort query parameters.
// columns maps the public sort keys to column names; unknown keys are rejected.
func ParsePageOptions(limit, page, sort string, columns map[string]string) (PageOptions, error) {
	opts := PageOptions{Limit: DefaultPageLimit, Page: 1}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("limit must be a positive integer")
		}
		if n > MaxPageLimit {
			n = MaxPageLimit
		}
		opts.Limit = n
	}
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("page must be a positive integer")
		}
		opts.Page = n
	}

	fields, err := ParseSort(sort, columns)
	if err != nil {
		return opts, err
	}
	opts.Sort = fields
	return opts, nil
}

// ParseSort accepts either a JSON object ({"createdAt":-1}) or a comma
// separated list where a leading "-" means descending ("-createdAt,id").
func ParseSort(sort string, columns map[string]string) ([]SortField, error) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return nil, nil
	}

	if strings.HasPrefix(sort, "{") {
		return parseJSONSort(sort, columns)
	}

	var fields []SortField
	for _, part := range strings.Split(sort, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		switch part[0] {
		case '-':
			desc = true
			part = part[1:]
		case '+':
			part = part[1:]
		}
		col, ok := columns[part]
		if !ok {
			return nil, fmt.Errorf("cannot sort by %q", part)
		}
		fields = append(fields, SortField{Column: col, Desc: desc})
	}
	return fields, nil
}

func parseJSONSort(sort string, columns map[string]string) ([]SortField, error) {
	// json.Decoder keeps key order, a map would not
	dec := json.NewDecoder(strings.NewReader(sort))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid sort: %w", err)
	}

	var fields []SortField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid sort: %w", err)
		}
		key, _ := tok.(string)
		var dir interface{}
		if err := dec.Decode(&dir); err != nil {
			return nil, fmt.Errorf("invalid sort: %w", err)
		}
		col, ok := columns[key]
		if !ok {
			return nil, fmt.Errorf("cannot sort by %q", key)
		}
		desc, err := sortDirection(dir)
		if err != nil {
			return nil, err
		}
		fields = append(fields, SortField{Column: col, Desc: desc})
	}
	return fields, nil
}

func sortDirection(v interface{}) (bool, error) {
	switch d := v.(type) {
	case float64:
		return d < 0, nil
	case string:
		switch strings.ToLower(d) {
		case "asc", "ascending", "1":
			return false, nil
		case "desc", "descending", "-1":
			return true, nil
		}
	}
	return false, fmt.Errorf("invalid sort direction %v", v)
}

// MessageSortColumns public sort keys of messages
var MessageSortColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
	"id":         "message_id",
}

// ConversationSortColumns public sort keys of conversations
var ConversationSortColumns = map[string]string{
	"createdAt":    "created_at",
	"created_at":   "created_at",
	"updatedAt":    "updated_at",
	"updated_at":   "updated_at",
	"unread_count": "unread_count",
	"_id":          "id",
}

// Page one page of a paginated listing
type Page[T any] struct {
	Items       []T
	TotalItems  int64
	TotalPages  int
	CurrentPage int
	Limit       int
}

// NewPage builds the page envelope for items fetched with opts
func NewPage[T any](items []T, total int64, opts PageOptions) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:       items,
		TotalItems:  total,
		TotalPages:  opts.TotalPages(total),
		CurrentPage: opts.Page,
		Limit:       opts.Limit,
	}
}
