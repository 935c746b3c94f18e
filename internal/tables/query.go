package tables

import (
	"encoding/json"
	"fmt"
)

// Query methods understood by every backend.
const (
	MethodEqual     = "equal"
	MethodOrderDesc = "orderDesc"
	MethodOrderAsc  = "orderAsc"
	MethodLimit     = "limit"
)

// Query is a single list predicate in the Appwrite query JSON shape.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// Equal matches rows whose attribute equals any of values.
func Equal(attribute string, values ...any) Query {
	return Query{Method: MethodEqual, Attribute: attribute, Values: values}
}

// OrderDesc sorts by attribute, highest first.
func OrderDesc(attribute string) Query {
	return Query{Method: MethodOrderDesc, Attribute: attribute}
}

// OrderAsc sorts by attribute, lowest first.
func OrderAsc(attribute string) Query {
	return Query{Method: MethodOrderAsc, Attribute: attribute}
}

// Limit bounds the number of returned rows.
func Limit(n int) Query {
	return Query{Method: MethodLimit, Values: []any{n}}
}

// String encodes the query the way the REST API expects it in queries[].
func (q Query) String() string {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Sprintf(`{"method":%q}`, q.Method)
	}

	return string(data)
}

// Validate checks the query shape.
func (q Query) Validate() error {
	switch q.Method {
	case MethodEqual:
		if err := ValidateColumn(q.Attribute); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}

		if len(q.Values) == 0 {
			return fmt.Errorf("%w: equal on %s needs at least one value", ErrInvalidQuery, q.Attribute)
		}
	case MethodOrderDesc, MethodOrderAsc:
		if err := ValidateColumn(q.Attribute); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
	case MethodLimit:
		n, ok := q.LimitValue()
		if !ok || n < 0 {
			return fmt.Errorf("%w: limit must be a non-negative integer", ErrInvalidQuery)
		}
	default:
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidQuery, q.Method)
	}

	return nil
}

// LimitValue returns the bound carried by a limit query.
func (q Query) LimitValue() (int, bool) {
	if q.Method != MethodLimit || len(q.Values) != 1 {
		return 0, false
	}

	n, ok := AsInt(q.Values[0])

	return int(n), ok
}

// Plan is the normalized form of a query list that local backends execute.
type Plan struct {
	Filters []Query
	Orders  []Query
	Limit   int
}

// NewPlan validates queries and splits them by kind. The last limit wins.
func NewPlan(queries []Query) (Plan, error) {
	plan := Plan{Limit: DefaultListLimit}

	for _, q := range queries {
		if err := q.Validate(); err != nil {
			return Plan{}, err
		}

		switch q.Method {
		case MethodEqual:
			plan.Filters = append(plan.Filters, q)
		case MethodOrderDesc, MethodOrderAsc:
			plan.Orders = append(plan.Orders, q)
		case MethodLimit:
			plan.Limit, _ = q.LimitValue()
		}
	}

	return plan, nil
}
