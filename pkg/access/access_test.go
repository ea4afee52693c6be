package access

import (
	"testing"

	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
)

func TestCanAccess(t *testing.T) {
	owner := &mock.User{ID: "u1", Roles: []mock.Role{mock.RoleUser}}
	stranger := &mock.User{ID: "u2", Roles: []mock.Role{mock.RoleUser}}
	admin := &mock.User{ID: "u3", Roles: []mock.Role{mock.RoleAdmin}}

	if err := CanAccess("u1", owner); err != nil {
		t.Errorf("owner denied: %v", err)
	}
	if err := CanAccess("u1", admin); err != nil {
		t.Errorf("admin denied: %v", err)
	}

	err := CanAccess("u1", stranger)
	if !apierr.Is(err, apierr.KindPermissionDenied) {
		t.Errorf("stranger error = %v, want permission denied", err)
	}
	if apierr.Message(err) != "access denied" {
		t.Errorf("denial message = %q, leaks detail", apierr.Message(err))
	}

	if err := CanAccess("u1", nil); !apierr.Is(err, apierr.KindUnauthorized) {
		t.Errorf("nil caller error = %v, want unauthorized", err)
	}
}
