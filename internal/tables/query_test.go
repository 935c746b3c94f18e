package tables

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryString(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"equal", Equal("searchTerm", "batman"), `{"method":"equal","attribute":"searchTerm","values":["batman"]}`},
		{"order desc", OrderDesc("count"), `{"method":"orderDesc","attribute":"count"}`},
		{"order asc", OrderAsc("$createdAt"), `{"method":"orderAsc","attribute":"$createdAt"}`},
		{"limit", Limit(5), `{"method":"limit","values":[5]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, tt.query.String())
		})
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{"equal ok", Equal("searchTerm", "x"), false},
		{"equal no values", Equal("searchTerm"), true},
		{"equal bad attribute", Equal("search term", "x"), true},
		{"order ok", OrderDesc("count"), false},
		{"order system attribute", OrderAsc("$sequence"), false},
		{"order empty attribute", OrderDesc(""), true},
		{"limit ok", Limit(0), false},
		{"limit negative", Limit(-1), true},
		{"limit not integer", Query{Method: MethodLimit, Values: []any{"five"}}, true},
		{"unknown method", Query{Method: "search", Attribute: "title"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidQuery)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestNewPlan(t *testing.T) {
	plan, err := NewPlan([]Query{Limit(5), Equal("searchTerm", "a"), OrderDesc("count"), Limit(2)})
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Limit)
	assert.Len(t, plan.Filters, 1)
	assert.Len(t, plan.Orders, 1)

	plan, err = NewPlan(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit, plan.Limit)

	_, err = NewPlan([]Query{Limit(-3)})
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestLimitValueFromDecodedJSON(t *testing.T) {
	var q Query
	require.NoError(t, json.Unmarshal([]byte(`{"method":"limit","values":[7]}`), &q))

	n, ok := q.LimitValue()
	require.True(t, ok)
	assert.Equal(t, 7, n)
}
