package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnSet(t *testing.T) {
	records := []Record{
		{"b": 1, "a": 2},
		{"c": nil, "a": 3},
	}
	assert.Equal(t, []string{"a", "b", "c"}, columnSet(records))
}

func TestColumnSetEmpty(t *testing.T) {
	assert.Empty(t, columnSet(nil))
}

func TestContains(t *testing.T) {
	keys := []string{"ap_gazette_no", "financial_year"}
	assert.True(t, contains(keys, "financial_year"))
	assert.False(t, contains(keys, "id"))
}
