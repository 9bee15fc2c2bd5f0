package postgres

import (
	"fmt"
	"listing-service/internal/core/domain"
	"strings"
)

const propertyColumns = `id, created_at, updated_at, expires_at, user_id,
	title, description, property_type, listing_type,
	city, locality, address,
	price, area, bedrooms, bathrooms,
	amenities, images, videos, floor_plan,
	plan_type, status, views, leads, is_verified, is_featured`

// Полный порядок выдачи: новые сверху, при равенстве - id по возрастанию
const newestFirst = "ORDER BY created_at DESC, id ASC"

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// addRaw добавляет условие без параметров
func (qb *queryBuilder) addRaw(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

// AddFloatFilter добавляет включительные границы диапазона
func (qb *queryBuilder) AddFloatFilter(fieldName string, min *float64, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

// nextArg резервирует параметр (например, для LIMIT)
func (qb *queryBuilder) nextArg(arg interface{}) string {
	placeholder := fmt.Sprintf("$%d", qb.argId)
	qb.args = append(qb.args, arg)
	qb.argId++
	return placeholder
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

// buildSearchQuery строит SELECT для поиска: только active, условия через AND
func buildSearchQuery(c domain.SearchCriteria) (string, []interface{}) {
	qb := newQueryBuilder()
	qb.addRaw("status = 'active'")

	if c.City != "" {
		qb.addCondition("%s ILIKE $%d", "city", "%"+escapeLike(c.City)+"%")
	}
	if c.PropertyType != "" {
		qb.addCondition("%s = $%d", "property_type", c.PropertyType)
	}
	if c.ListingType != "" {
		qb.addCondition("%s = $%d", "listing_type", c.ListingType)
	}
	qb.AddFloatFilter("price", c.PriceMin, c.PriceMax)
	if c.Bedrooms != nil {
		qb.addCondition("%s = $%d", "bedrooms", *c.Bedrooms)
	}

	query := fmt.Sprintf("SELECT %s FROM properties %s %s", propertyColumns, qb.where(), newestFirst)
	return query, qb.args
}

func buildListActiveQuery(limit int) (string, []interface{}) {
	qb := newQueryBuilder()
	qb.addRaw("status = 'active'")

	query := fmt.Sprintf("SELECT %s FROM properties %s %s", propertyColumns, qb.where(), newestFirst)
	if limit > 0 {
		query += " LIMIT " + qb.nextArg(limit)
	}
	return query, qb.args
}

func buildListByOwnerQuery(ownerID string) (string, []interface{}) {
	qb := newQueryBuilder()
	qb.addCondition("%s = $%d", "user_id", ownerID)

	query := fmt.Sprintf("SELECT %s FROM properties %s %s", propertyColumns, qb.where(), newestFirst)
	return query, qb.args
}

// escapeLike экранирует спецсимволы LIKE, чтобы ввод искался буквально
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
