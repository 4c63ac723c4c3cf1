package repository

import (
	"github.com/sincelove/chat-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applySort adds the requested ORDER BY terms followed by the primary key,
// so pages stay stable when sort keys tie. Columns come from a whitelist.
func applySort(query *gorm.DB, fields []domain.SortField, pk string) *gorm.DB {
	pkDesc := false
	for i, f := range fields {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: f.Column}, Desc: f.Desc})
		if i == 0 {
			pkDesc = f.Desc
		}
	}
	return query.Order(clause.OrderByColumn{Column: clause.Column{Name: pk}, Desc: pkDesc})
}
