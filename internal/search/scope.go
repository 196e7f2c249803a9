package search

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrEmptyCriteria is returned when an advanced search carries no usable field.
var ErrEmptyCriteria = errors.New("at least one search field is required")

// Scope narrows a query rooted at the schools table.
type Scope func(*gorm.DB) *gorm.DB

// NameScope matches schools whose name contains term, ignoring case.
// A blank term applies no predicate, which is the list-all path.
func NameScope(term string) Scope {
	term = strings.TrimSpace(term)
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		return db.Where(likeClause("schools.school_name"), likePattern(term))
	}
}

// CriteriaScope ANDs one clause per supplied field. Fields behind the same association are
// evaluated against a single association row.
func CriteriaScope(criteria Criteria) (Scope, error) {
	terms := criteria.Terms()
	if len(terms) == 0 {
		return nil, ErrEmptyCriteria
	}

	direct := make([]Term, 0, len(terms))
	joined := make(map[Join][]Term)
	for _, term := range terms {
		if term.Field.Join == JoinNone {
			direct = append(direct, term)
			continue
		}
		joined[term.Field.Join] = append(joined[term.Field.Join], term)
	}

	return func(db *gorm.DB) *gorm.DB {
		for _, term := range direct {
			sql, arg := predicate(term)
			db = db.Where(sql, arg)
		}
		for _, join := range joinOrder {
			group := joined[join]
			if len(group) == 0 {
				continue
			}
			sql, args := exists(join, group)
			db = db.Where(sql, args...)
		}
		return db
	}, nil
}

// Ordered applies the deterministic ordering shared by every school lookup.
func Ordered(db *gorm.DB) *gorm.DB {
	return db.Order("schools.school_id ASC")
}

func predicate(term Term) (string, interface{}) {
	if term.Field.Mode == Exact {
		return term.Field.Column + " = ?", term.Value
	}
	return likeClause(term.Field.Column), likePattern(term.Value)
}

func exists(join Join, terms []Term) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("EXISTS (SELECT 1 FROM ")
	b.WriteString(joinSources[join])

	args := make([]interface{}, 0, len(terms))
	for _, term := range terms {
		sql, arg := predicate(term)
		b.WriteString(" AND ")
		b.WriteString(sql)
		args = append(args, arg)
	}
	b.WriteString(")")

	return b.String(), args
}

func likeClause(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

func likePattern(term string) string {
	return "%" + EscapeLike(strings.ToLower(term)) + "%"
}

// EscapeLike neutralises LIKE metacharacters so user input only matches literally.
func EscapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
