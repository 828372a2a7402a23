package storage

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

func byID(id int64) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id)
	}
}

func ownedBy(owner int64) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.owner_id = ?", owner)
	}
}

func withColumn(column, value string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value)
	}
}

// window pages results in id order so every window is stable.
func window(limit, offset int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.id ASC").Limit(limit).Offset(offset)
	}
}

func apply(q *bun.SelectQuery, criteria ...repository.SelectCriteria) *bun.SelectQuery {
	for _, c := range criteria {
		q = c(q)
	}
	return q
}
