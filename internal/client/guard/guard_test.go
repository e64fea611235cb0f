package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/client/services"
)

func TestGuards(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}
	loading := services.Snapshot{IsLoading: true, Phase: services.PhaseChecking}
	anon := services.Snapshot{Phase: services.PhaseAnonymous}
	authed := services.Snapshot{User: user, IsAuthenticated: true, Phase: services.PhaseAuthenticated}
	// a login in flight keeps the previous session visible but loading
	authedBusy := authed
	authedBusy.IsLoading = true

	tests := []struct {
		name  string
		guard Guard
		snap  services.Snapshot
		want  Decision
	}{
		{"protected while checking", Protected(), loading, Decision{Kind: Wait, Message: CheckingMessage}},
		{"protected anonymous", Protected(), anon, Decision{Kind: Redirect, To: LoginRoute}},
		{"protected authenticated", Protected(), authed, Decision{Kind: Render}},
		{"protected busy", Protected(), authedBusy, Decision{Kind: Wait, Message: CheckingMessage}},
		{"public while checking", Public(), loading, Decision{Kind: Wait, Message: CheckingMessage}},
		{"public anonymous", Public(), anon, Decision{Kind: Render}},
		{"public authenticated", Public(), authed, Decision{Kind: Redirect, To: HomeRoute}},
		{"open anonymous", Open(), anon, Decision{Kind: Render}},
		{"open while checking", Open(), loading, Decision{Kind: Render}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.guard.Decide(tt.snap))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "wait", Wait.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
