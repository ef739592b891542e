package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayID(t *testing.T) {
	assert.Equal(t, "REQ-007", (&Request{ID: 7}).DisplayID())
	assert.Equal(t, "REQ-042", (&Request{ID: 42}).DisplayID())
	// padding stops at three digits, it never truncates
	assert.Equal(t, "REQ-1234", (&Request{ID: 1234}).DisplayID())
}

func TestMapExternalStatus(t *testing.T) {
	cases := map[string]string{
		"pending":  RequestStatusPending,
		"Pending":  RequestStatusPending,
		"approved": RequestStatusApproved,
		"APPROVED": RequestStatusApproved,
		"rejected": RequestStatusRejected,
		"Rejected": RequestStatusRejected,
		// unknown values pass through for forward compatibility
		"archived": "archived",
		"":         "",
	}
	for input, want := range cases {
		assert.Equal(t, want, MapExternalStatus(input), "input %q", input)
	}
}
