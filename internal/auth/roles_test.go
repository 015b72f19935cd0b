package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"assetdesk/internal/model"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{"admin in admin-only", model.RoleAdmin, []string{model.RoleAdmin}, true},
		{"editor in admin-only", model.RoleEditor, []string{model.RoleAdmin}, false},
		{"editor in editor set", model.RoleEditor, []string{model.RoleAdmin, model.RoleEditor}, true},
		{"viewer reads", model.RoleViewer, []string{model.RoleAdmin, model.RoleEditor, model.RoleViewer}, true},
		{"viewer writes", model.RoleViewer, []string{model.RoleAdmin, model.RoleEditor}, false},
		{"empty role", "", []string{model.RoleAdmin}, false},
		{"no allowed roles", model.RoleAdmin, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.role, tt.allowed...))
		})
	}
}
