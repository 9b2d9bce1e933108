// Package repository defines the store-agnostic query options shared by
// every persistence adapter.
package repository

import (
	"fmt"
	"strings"
)

// Option applies a modification to a Query.
type Option func(Query) Query

// Query holds conditions, ordering and preloads for store lookups.
type Query struct {
	conditions []Condition
	clauses    []Clause
	orders     []Order
	preloads   []string
}

// Build creates a Query from a set of options.
func Build(options ...Option) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns the equality conditions.
func (q Query) Conditions() []Condition {
	result := make([]Condition, len(q.conditions))
	copy(result, q.conditions)
	return result
}

// Clauses returns the raw WHERE clauses.
func (q Query) Clauses() []Clause {
	result := make([]Clause, len(q.clauses))
	copy(result, q.clauses)
	return result
}

// Orders returns the query ordering specifications.
func (q Query) Orders() []Order {
	result := make([]Order, len(q.orders))
	copy(result, q.orders)
	return result
}

// Preloads returns the associations to load alongside the results.
func (q Query) Preloads() []string {
	result := make([]string, len(q.preloads))
	copy(result, q.preloads)
	return result
}

// Condition represents a single field = value condition.
type Condition struct {
	field string
	value any
}

// Field returns the condition field name.
func (c Condition) Field() string { return c.field }

// Value returns the condition value.
func (c Condition) Value() any { return c.value }

// String returns a readable representation.
func (c Condition) String() string {
	return fmt.Sprintf("%s = %v", c.field, c.value)
}

// Clause is a raw SQL predicate with positional arguments.
type Clause struct {
	sql  string
	args []any
}

// SQL returns the predicate text.
func (c Clause) SQL() string { return c.sql }

// Args returns the predicate arguments.
func (c Clause) Args() []any {
	result := make([]any, len(c.args))
	copy(result, c.args)
	return result
}

// Order represents a sort specification.
type Order struct {
	field     string
	ascending bool
}

// Field returns the order field name.
func (o Order) Field() string { return o.field }

// Ascending returns true for ASC, false for DESC.
func (o Order) Ascending() bool { return o.ascending }

// WithCondition adds a field = value equality condition.
// Domain packages use this to define their own typed options.
func WithCondition(field string, value any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, value: value})
		return q
	}
}

// WithContainsAny matches rows where any of the fields contains term,
// ignoring case. LIKE wildcards in term are matched literally.
// A blank term adds no predicate.
func WithContainsAny(term string, fields ...string) Option {
	return func(q Query) Query {
		if term == "" || len(fields) == 0 {
			return q
		}
		pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"
		parts := make([]string, len(fields))
		args := make([]any, len(fields))
		for i, f := range fields {
			parts[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, f)
			args[i] = pattern
		}
		q.clauses = append(q.clauses, Clause{sql: "(" + strings.Join(parts, " OR ") + ")", args: args})
		return q
	}
}

// EscapeLike escapes LIKE metacharacters using backslash.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// WithID filters by the "id" column.
func WithID(id string) Option {
	return WithCondition("id", id)
}

// WithPreload loads the named association with each result.
func WithPreload(association string) Option {
	return func(q Query) Query {
		q.preloads = append(q.preloads, association)
		return q
	}
}

// WithOrderAsc adds ascending ordering on a field.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc adds descending ordering on a field.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: false})
		return q
	}
}
