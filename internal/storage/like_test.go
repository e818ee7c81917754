package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%desk%", ContainsPattern("Desk"))
	assert.Equal(t, `%50\% off%`, ContainsPattern("50% OFF"))
	assert.Equal(t, `%a\_b%`, ContainsPattern("a_b"))
	assert.Equal(t, `%c:\\temp%`, ContainsPattern(`C:\temp`))
	assert.Equal(t, "%%", ContainsPattern(""))
}
