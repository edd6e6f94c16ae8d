package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ApplyFilters adds every predicate of set to q. Fields must be in allowed.
func ApplyFilters(q squirrel.SelectBuilder, set *filter.Set, allowed []string) (squirrel.SelectBuilder, error) {
	valid := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		valid[c] = true
	}

	for _, item := range set.Items() {
		cond, err := condition(item, valid)
		if err != nil {
			return q, err
		}
		q = q.Where(cond)
	}
	return q, nil
}

func condition(item filter.Item, valid map[string]bool) (squirrel.Sqlizer, error) {
	if item.Operator == filter.AnyOf {
		or := make(squirrel.Or, 0, len(item.Or))
		for _, alt := range item.Or {
			c, err := condition(alt, valid)
			if err != nil {
				return nil, err
			}
			or = append(or, c)
		}
		return or, nil
	}

	if !valid[item.Field] {
		return nil, fmt.Errorf("invalid filter column: %s", item.Field)
	}

	switch item.Operator {
	case filter.Equal:
		return squirrel.Eq{item.Field: item.Value}, nil
	case filter.NotEqual:
		return squirrel.NotEq{item.Field: item.Value}, nil
	case filter.Less:
		return squirrel.Lt{item.Field: item.Value}, nil
	case filter.LessOrEqual:
		return squirrel.LtOrEq{item.Field: item.Value}, nil
	case filter.Greater:
		return squirrel.Gt{item.Field: item.Value}, nil
	case filter.GreaterOrEqual:
		return squirrel.GtOrEq{item.Field: item.Value}, nil
	case filter.InList:
		return squirrel.Eq{item.Field: item.Value}, nil
	case filter.NotInList:
		return squirrel.NotEq{item.Field: item.Value}, nil
	case filter.Contains:
		return squirrel.ILike{item.Field: "%" + escapeLike(fmt.Sprint(item.Value)) + "%"}, nil
	case filter.NotContains:
		return squirrel.NotILike{item.Field: "%" + escapeLike(fmt.Sprint(item.Value)) + "%"}, nil
	case filter.HasPrefix:
		return squirrel.Like{item.Field: escapeLike(fmt.Sprint(item.Value)) + "%"}, nil
	case filter.NotHasPrefix:
		return squirrel.NotLike{item.Field: escapeLike(fmt.Sprint(item.Value)) + "%"}, nil
	case filter.IsNull:
		return squirrel.Eq{item.Field: nil}, nil
	case filter.IsNotNull:
		return squirrel.NotEq{item.Field: nil}, nil
	}
	return nil, fmt.Errorf("unsupported filter operator: %s", item.Operator)
}

// escapeLike makes user text match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CountOf wraps a filtered select into SELECT COUNT(*), so data and count share predicates.
func CountOf(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return Builder().Select("COUNT(*)").FromSelect(q, "sub")
}

// Paginate orders q and applies the page window.
func Paginate(q squirrel.SelectBuilder, page domain.Page, orderBy ...string) squirrel.SelectBuilder {
	q = q.OrderBy(orderBy...)
	if page.Limit > 0 {
		q = q.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		q = q.Offset(uint64(page.Offset))
	}
	return q
}

// ListPage runs the optional count and the page query built from the same filtered select.
func ListPage[T any](ctx context.Context, querier Querier, q squirrel.SelectBuilder, page domain.Page, orderBy ...string) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: page.Limit, Offset: page.Offset, Items: []T{}}

	if page.WithTotal {
		countSQL, countArgs, err := CountOf(q).ToSql()
		if err != nil {
			return result, fmt.Errorf("build count query: %w", err)
		}
		var total int64
		if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return result, fmt.Errorf("count: %w", err)
		}
		result.TotalCount = &total
	}

	sql, args, err := Paginate(q, page, orderBy...).ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}
