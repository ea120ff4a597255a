package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReport_Status(t *testing.T) {
	boom := errors.New("unexpected end of JSON input")

	tests := []struct {
		name     string
		tables   int
		problems []string
		want     LoadStatus
	}{
		{"no problems", 6, nil, LoadClean},
		{"one of six", 6, []string{"docs"}, LoadPartial},
		{"all tables", 2, []string{"docs", "chunks"}, LoadFailed},
		{"unknown table count", 0, []string{"docs"}, LoadPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := LoadReport{Component: "metadata", Tables: tt.tables}
			for _, table := range tt.problems {
				r.Add(table, boom)
			}
			assert.Equal(t, tt.want, r.Status())
		})
	}
}

func TestLoadReport_Err(t *testing.T) {
	r := LoadReport{Component: "metadata", Tables: 6}
	assert.NoError(t, r.Err())

	boom := errors.New("bad json")
	r.Add("facts", boom)

	err := r.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed))
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "facts")
	assert.Contains(t, err.Error(), "partial")
}

func TestLoadReport_Merge(t *testing.T) {
	a := LoadReport{Component: "store", Tables: 6}
	b := LoadReport{Component: "lexical", Tables: 3}
	b.Add("df", errors.New("truncated"))

	a.Merge(b)
	assert.Equal(t, 9, a.Tables)
	require.Len(t, a.Problems, 1)
	assert.Equal(t, "df", a.Problems[0].Table)
	assert.Equal(t, LoadPartial, a.Status())
}
