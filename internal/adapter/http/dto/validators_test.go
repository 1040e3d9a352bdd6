package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := TransferRequest{
		FromAccountID: "  u1  ",
		ToAccountID:   " u2 ",
		Amount:        5,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "u1", req.FromAccountID)
	assert.Equal(t, "u2", req.ToAccountID)
	assert.Equal(t, int64(5), req.Amount)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := LoginRequest{Username: "<b>alice</b>", Password: "p"}
	SanitizeStruct(&req)

	assert.Equal(t, "&lt;b&gt;alice&lt;/b&gt;", req.Username)
}

func TestSanitizeStruct_SkipsTaggedFields(t *testing.T) {
	req := RegisterRequest{Username: " alice ", Password: "  keep <spaces>  "}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "  keep <spaces>  ", req.Password)
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	owner := "  alice  "
	req := CreateAccountRequest{ID: "a1", OwnerID: &owner}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", *req.OwnerID)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := CreateAccountRequest{ID: "a1"}
	SanitizeStruct(&req)
	assert.Nil(t, req.OwnerID)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Binding validation tests ---

func TestTransferRequest_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   TransferRequest
		valid bool
	}{
		{"ok", TransferRequest{FromAccountID: "u1", ToAccountID: "u2", Amount: 10}, true},
		{"zero amount", TransferRequest{FromAccountID: "u1", ToAccountID: "u2"}, false},
		{"negative amount", TransferRequest{FromAccountID: "u1", ToAccountID: "u2", Amount: -1}, false},
		{"missing sender", TransferRequest{ToAccountID: "u2", Amount: 1}, false},
		{"bad receiver id", TransferRequest{FromAccountID: "u1", ToAccountID: "u 2", Amount: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCreateAccountRequest_Validation(t *testing.T) {
	bad := "no spaces allowed"
	assert.NoError(t, binding.Validator.ValidateStruct(&CreateAccountRequest{ID: "u9"}))
	assert.Error(t, binding.Validator.ValidateStruct(&CreateAccountRequest{ID: "u9", InitialBalance: -1}))
	assert.Error(t, binding.Validator.ValidateStruct(&CreateAccountRequest{ID: "u9", OwnerID: &bad}))
	assert.Error(t, binding.Validator.ValidateStruct(&CreateAccountRequest{ID: ""}))
}

func TestAccountIDValidator(t *testing.T) {
	type probe struct {
		ID string `binding:"account_id"`
	}

	valid := []string{"u1", "REF_002", "a.b.c", "ABC-def_GHI.123"}
	for _, id := range valid {
		assert.NoError(t, binding.Validator.ValidateStruct(&probe{ID: id}), id)
	}

	invalid := []string{"ref 001", "ref<001>", "ref;DROP", "ref\n001"}
	for _, id := range invalid {
		assert.Error(t, binding.Validator.ValidateStruct(&probe{ID: id}), id)
	}
}
