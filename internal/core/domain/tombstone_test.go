package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetKind_IsValid(t *testing.T) {
	tests := []struct {
		kind TargetKind
		want bool
	}{
		{TargetDocument, true},
		{TargetChunk, true},
		{TargetFact, true},
		{TargetSummary, true},
		{TargetKind("object"), false},
		{TargetKind(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.IsValid())
		})
	}
}

func TestForgetResult_Found(t *testing.T) {
	assert.True(t, ForgetResult{Status: ForgetDeleted}.Found())
	assert.False(t, ForgetResult{Status: ForgetNotFound}.Found())
}
