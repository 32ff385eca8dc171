package handler

import (
	"strings"
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name string
		req  any
		want string
	}{
		{
			name: "json field names",
			req:  &changePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret1"},
			want: "newPassword must differ from currentPassword",
		},
		{
			name: "unknown role",
			req:  &createAccountRequest{Username: "u", Email: "u@example.com", Password: "secret1", Role: "janitor"},
			want: "role must be one of: admin manager owner tenant accountant",
		},
		{
			name: "missing fields",
			req:  &loginRequest{},
			want: "email is required; password is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.req)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidator_AcceptsKnownRole(t *testing.T) {
	req := &createAccountRequest{Username: "u", Email: "u@example.com", Password: "secret1", Role: "accountant"}
	if err := NewValidator().Validate(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
