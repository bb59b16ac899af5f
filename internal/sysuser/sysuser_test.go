package sysuser

import (
	"context"
	"os/user"
	"strings"
	"testing"
)

type fakeRunner struct {
	calls [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return nil, nil
}

func knownLookups(users, groups map[string]bool) (func(string) (*user.User, error), func(string) (*user.Group, error)) {
	lu := func(name string) (*user.User, error) {
		if users[name] {
			return &user.User{Username: name}, nil
		}
		return nil, user.UnknownUserError(name)
	}
	lg := func(name string) (*user.Group, error) {
		if groups[name] {
			return &user.Group{Name: name}, nil
		}
		return nil, user.UnknownGroupError(name)
	}
	return lu, lg
}

func TestEnsureGroup(t *testing.T) {
	r := &fakeRunner{}
	lu, lg := knownLookups(nil, map[string]bool{"wheel": true})
	m := NewWith(r, lu, lg)

	// existing group is a no-op
	created, err := m.EnsureGroup(context.Background(), "wheel", true)
	if err != nil || created {
		t.Fatalf("existing group: created=%v err=%v", created, err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("groupadd run for existing group: %v", r.calls)
	}

	created, err = m.EnsureGroup(context.Background(), "odl", true)
	if err != nil || !created {
		t.Fatalf("missing group: created=%v err=%v", created, err)
	}
	want := "groupadd --system odl"
	if got := strings.Join(r.calls[0], " "); got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestEnsureUser(t *testing.T) {
	r := &fakeRunner{}
	lu, lg := knownLookups(map[string]bool{"root": true}, nil)
	m := NewWith(r, lu, lg)

	if created, err := m.EnsureUser(context.Background(), UserOpts{Name: "root"}); err != nil || created {
		t.Fatalf("existing user: created=%v err=%v", created, err)
	}

	created, err := m.EnsureUser(context.Background(), UserOpts{
		Name:    "odl",
		Group:   "odl",
		HomeDir: "/opt/opendaylight-0.18.2",
		System:  true,
	})
	if err != nil || !created {
		t.Fatalf("missing user: created=%v err=%v", created, err)
	}
	got := strings.Join(r.calls[0], " ")
	want := "useradd --shell /sbin/nologin --system -g odl -d /opt/opendaylight-0.18.2 -M odl"
	if got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestEnsureUser_NameRequired(t *testing.T) {
	m := NewWith(&fakeRunner{}, nil, nil)
	if _, err := m.EnsureUser(context.Background(), UserOpts{}); err == nil {
		t.Fatal("expected error for empty name")
	}
}
