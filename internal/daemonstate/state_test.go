package daemonstate

import (
	"context"
	"errors"
	"testing"

	"github.com/bananasjim/rdc-cli/internal/replay"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

func newTestState() *State {
	s := New("test", "tok")
	s.Adapter = replay.NewFakeAdapter()
	s.MaxEID = s.Adapter.MaxEID()
	return s
}

func TestSeekRejectsOutOfRange(t *testing.T) {
	s := newTestState()
	err := s.Seek(context.Background(), s.MaxEID+1)
	if err == nil {
		t.Fatal("Seek past MaxEID should fail")
	}
	if e, ok := rpcerr.As(err); !ok || e.Code != rpcerr.CodePrecondition {
		t.Errorf("error = %v, want a Precondition rpcerr", err)
	}
}

func TestSeekIsIdempotentAndNeverTouchesCurrentEID(t *testing.T) {
	s := newTestState()
	s.CurrentEID = 5
	if err := s.Seek(context.Background(), 12); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if s.CurrentEID != 5 {
		t.Errorf("CurrentEID = %d, want unchanged at 5 (Seek must not mutate it)", s.CurrentEID)
	}
	if !s.headValid || s.headEID != 12 {
		t.Errorf("headEID = %d headValid = %v, want 12/true", s.headEID, s.headValid)
	}

	// A second seek to the same eid is a cache hit: no error, head unchanged.
	if err := s.Seek(context.Background(), 12); err != nil {
		t.Fatalf("repeat Seek: %v", err)
	}
	if s.headEID != 12 {
		t.Errorf("headEID = %d after repeat seek, want still 12", s.headEID)
	}
}

func TestGotoAssignsCurrentEIDAndPersists(t *testing.T) {
	s := newTestState()
	var persisted int
	persistCalls := 0
	s.PersistDescriptor = func(eid int) error {
		persisted = eid
		persistCalls++
		return nil
	}
	if err := s.Goto(context.Background(), 20); err != nil {
		t.Fatalf("Goto: %v", err)
	}
	if s.CurrentEID != 20 {
		t.Errorf("CurrentEID = %d, want 20", s.CurrentEID)
	}
	if persisted != 20 || persistCalls != 1 {
		t.Errorf("PersistDescriptor called with %d, %d times, want 20 once", persisted, persistCalls)
	}
}

func TestGotoWrapsPersistFailureAsInternal(t *testing.T) {
	s := newTestState()
	s.PersistDescriptor = func(eid int) error { return errors.New("disk full") }
	err := s.Goto(context.Background(), 3)
	if err == nil {
		t.Fatal("Goto should surface the persist error")
	}
	if e, ok := rpcerr.As(err); !ok || e.Code != rpcerr.CodeInternal {
		t.Errorf("error = %v, want an Internal rpcerr", err)
	}
	// CurrentEID was already reassigned before persistence failed.
	if s.CurrentEID != 3 {
		t.Errorf("CurrentEID = %d, want 3 even though persistence failed", s.CurrentEID)
	}
}

func TestGotoRejectsOutOfRangeBeforeMutating(t *testing.T) {
	s := newTestState()
	s.CurrentEID = 7
	if err := s.Goto(context.Background(), -1); err == nil {
		t.Fatal("Goto with a negative eid should fail")
	}
	if s.CurrentEID != 7 {
		t.Errorf("CurrentEID = %d, want unchanged at 7 after a rejected Goto", s.CurrentEID)
	}
}

func TestWithRestoreRestoresHeadAfterTransientSeeks(t *testing.T) {
	s := newTestState()
	s.PersistDescriptor = func(eid int) error { return nil }
	if err := s.Goto(context.Background(), 15); err != nil {
		t.Fatalf("Goto: %v", err)
	}

	err := s.WithRestore(context.Background(), func() error {
		return s.Seek(context.Background(), 40)
	})
	if err != nil {
		t.Fatalf("WithRestore: %v", err)
	}
	if s.headEID != 15 {
		t.Errorf("headEID = %d after WithRestore, want restored to 15", s.headEID)
	}
	if s.CurrentEID != 15 {
		t.Errorf("CurrentEID = %d, want unchanged at 15 (WithRestore must not touch it)", s.CurrentEID)
	}
}

func TestWithRestoreSkipsRestoreWhenCurrentEIDUnset(t *testing.T) {
	s := newTestState()
	err := s.WithRestore(context.Background(), func() error {
		return s.Seek(context.Background(), 9)
	})
	if err != nil {
		t.Fatalf("WithRestore: %v", err)
	}
	// CurrentEID was 0 (unset); WithRestore must not seek back to 0.
	if s.headEID != 9 {
		t.Errorf("headEID = %d, want left at 9 since there was no prior position to restore", s.headEID)
	}
}

func TestWithRestorePropagatesFnError(t *testing.T) {
	s := newTestState()
	wantErr := errors.New("boom")
	err := s.WithRestore(context.Background(), func() error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("WithRestore error = %v, want %v", err, wantErr)
	}
}

func TestResolveEIDPrefersExplicit(t *testing.T) {
	s := newTestState()
	s.CurrentEID = 4
	eid, err := s.ResolveEID(8, true)
	if err != nil || eid != 8 {
		t.Errorf("ResolveEID(8, true) = (%d, %v), want (8, nil)", eid, err)
	}
}

func TestResolveEIDRejectsUnsetCurrent(t *testing.T) {
	s := newTestState()
	_, err := s.ResolveEID(0, false)
	if err == nil {
		t.Fatal("ResolveEID with no explicit eid and CurrentEID=0 should fail")
	}
	if e, ok := rpcerr.As(err); !ok || e.Code != rpcerr.CodePrecondition {
		t.Errorf("error = %v, want a Precondition rpcerr", err)
	}
}

func TestResolveEIDFallsBackToCurrent(t *testing.T) {
	s := newTestState()
	s.CurrentEID = 11
	eid, err := s.ResolveEID(0, false)
	if err != nil || eid != 11 {
		t.Errorf("ResolveEID(0, false) = (%d, %v), want (11, nil)", eid, err)
	}
}
