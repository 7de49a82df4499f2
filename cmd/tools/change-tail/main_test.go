package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStringList(t *testing.T) {
	assert.Nil(t, parseStringList(""))
	assert.Equal(t, []string{"a", "b"}, parseStringList(" a, ,b "))
}
