package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:5173"}, splitOrigins("http://localhost:5173/"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitOrigins(" https://a.example , https://b.example,"))
	assert.Nil(t, splitOrigins(""))
}
