package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_JSONKeepsUnknownFields(t *testing.T) {
	in := []byte(`{"id":7,"username":"alice","email":"a@x.io","bio":"hi","prefs":{"dark":true}}`)

	var u User
	require.NoError(t, json.Unmarshal(in, &u))
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "hi", u.Extra["bio"])
	assert.Equal(t, map[string]any{"dark": true}, u.Extra["prefs"])

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestUser_JSONWithoutExtra(t *testing.T) {
	out, err := json.Marshal(User{ID: 1, Username: "bob"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"username":"bob"}`, string(out))
}

func TestUser_Merge(t *testing.T) {
	u := User{ID: 1, Username: "alice", Email: "old@x.io", Extra: map[string]any{"bio": "a"}}

	got, err := u.Merge(map[string]any{"email": "new@x.io", "theme": "dark"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "new@x.io", got.Email)
	assert.Equal(t, "a", got.Extra["bio"])
	assert.Equal(t, "dark", got.Extra["theme"])
	assert.Equal(t, "old@x.io", u.Email, "receiver is not modified")
}

func TestUser_MergeRejectsBadType(t *testing.T) {
	_, err := User{ID: 1}.Merge(map[string]any{"id": "not-a-number"})
	require.Error(t, err)
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{Username: "ada", FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "Ada", User{Username: "ada", FirstName: "Ada"}.DisplayName())
	assert.Equal(t, "ada", User{Username: "ada"}.DisplayName())
}

func TestParseLoginResponse(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantToken string
		wantUser  string
	}{
		{"token and user", `{"token":"t1","user":{"id":1,"username":"alice"}}`, "t1", "alice"},
		{"access and user", `{"access":"t2","refresh":"r","user":{"id":1,"username":"alice"}}`, "t2", "alice"},
		{"bare user with token", `{"id":1,"username":"alice","access_token":"t3"}`, "t3", "alice"},
		{"no token", `{"user":{"id":1,"username":"alice"}}`, "", "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseLoginResponse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, res.Token)
			assert.Equal(t, tt.wantUser, res.User.Username)
			assert.Empty(t, res.User.Extra)
		})
	}

	_, err := ParseLoginResponse([]byte(`[1,2]`))
	require.Error(t, err)
}
