package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInstitutionalEmail(t *testing.T) {
	valid := []string{
		"user@colorado.edu",
		"alice.smith@colorado.edu",
		"a_b+tag%x-y@colorado.edu",
	}
	for _, e := range valid {
		assert.True(t, IsInstitutionalEmail(e), e)
	}

	invalid := []string{
		"",
		"user@gmail.com",
		"user@colorado.edu.evil.com",
		"user@sub.colorado.edu",
		"user@COLORADO.EDU",
		"@colorado.edu",
		"us er@colorado.edu",
		" user@colorado.edu",
		"user@coloradoXedu",
		"user",
	}
	for _, e := range invalid {
		assert.False(t, IsInstitutionalEmail(e), e)
	}
}
