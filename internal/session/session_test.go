package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinic-booking-client/internal/model"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	f, err := OpenFile(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return map[string]Store{"memory": NewMemory(), "file": f}
}

func TestTokenRoundTrip(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := st.Token(); ok {
				t.Fatal("new store should be empty")
			}
			if err := st.SaveToken("tok-123"); err != nil {
				t.Fatalf("save: %v", err)
			}
			if got, ok := st.Token(); !ok || got != "tok-123" {
				t.Errorf("token: got %q %v", got, ok)
			}
			if err := st.RemoveToken(); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if _, ok := st.Token(); ok {
				t.Error("token should be gone after remove")
			}
		})
	}
}

func TestRemoveTokenClearsUser(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st.SaveToken("tok")
			st.SaveUser(&model.User{ID: 3, FullName: "Aylin Demir", Role: model.RolePatient})
			if err := st.RemoveToken(); err != nil {
				t.Fatal(err)
			}
			if _, ok := st.User(); ok {
				t.Error("cached user should be cleared with the token")
			}
		})
	}
}

func TestEmptyTokenRejected(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.SaveToken(""); err != ErrEmptyToken {
				t.Errorf("expected ErrEmptyToken, got %v", err)
			}
		})
	}
}

func TestUserIsCopied(t *testing.T) {
	st := NewMemory()
	u := &model.User{ID: 1, FullName: "Before"}
	st.SaveUser(u)
	u.FullName = "After"
	got, _ := st.User()
	if got.FullName != "Before" {
		t.Errorf("store aliased caller's user: %s", got.FullName)
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	f.SaveToken("persisted")
	f.SaveUser(&model.User{ID: 9, Email: "dr@clinic.com", Role: model.RoleDoctor})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode: %o", perm)
	}

	// user_data is stored as a JSON string inside the document
	raw, _ := os.ReadFile(path)
	entries := map[string]string{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if entries[KeyToken] != "persisted" {
		t.Errorf("auth_token entry: %q", entries[KeyToken])
	}

	again, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if tok, _ := again.Token(); tok != "persisted" {
		t.Errorf("token after reopen: %q", tok)
	}
	if u, ok := again.User(); !ok || u.Role != model.RoleDoctor || u.ID != 9 {
		t.Errorf("user after reopen: %+v", u)
	}
}

func TestOpenFileRejectsCorruptSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("{not json"), 0o600)
	if _, err := OpenFile(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.SaveToken("a")
			st.RemoveToken()
		}()
		go func() {
			defer wg.Done()
			st.Token()
			st.User()
		}()
	}
	wg.Wait()
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestExpired(t *testing.T) {
	now := time.Now()
	if !Expired(signed(t, now.Add(-time.Minute)), now) {
		t.Error("past exp should be expired")
	}
	if Expired(signed(t, now.Add(time.Hour)), now) {
		t.Error("future exp should not be expired")
	}
	if Expired("opaque-token", now) {
		t.Error("opaque tokens never expire client-side")
	}
	if exp, ok := TokenExpiry(signed(t, now.Add(time.Hour))); !ok || exp.Before(now) {
		t.Errorf("expiry: %v %v", exp, ok)
	}
}
