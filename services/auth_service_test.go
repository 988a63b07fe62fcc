package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"pqrssi-portal/utils"
)

var userColumns = []string{"id", "nombre", "email", "contraseña", "is_admin"}

func newTestAuthService(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	svc := NewAuthService(db)
	svc.hash = func(p string) (string, error) { return "hashed:" + p, nil }
	return svc, mock
}

func TestRegisterCreatesUserWithHashedPassword(t *testing.T) {
	svc, mock := newTestAuthService(t)

	mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE email = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`INSERT INTO "usuarios" \("nombre","email","contraseña","is_admin"\)`).
		WithArgs("Ana", "ana@example.com", "hashed:Abcdef1!", false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	user, err := svc.Register(context.Background(), " Ana ", "Ana@Example.com", "Abcdef1!")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.UserID != 5 || user.IsAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
	verifyMock(t, mock)
}

func TestRegisterRejectsWeakPasswordBeforeStoreAccess(t *testing.T) {
	svc, mock := newTestAuthService(t)

	for _, pw := range []string{"abc", "abcdefg1!", "ABCDEFG1!", "Abcdefgh!", "Abcdefg12"} {
		if _, err := svc.Register(context.Background(), "Ana", "ana@example.com", pw); !errors.Is(err, ErrPasswordPolicy) {
			t.Fatalf("password %q: expected ErrPasswordPolicy, got %v", pw, err)
		}
	}
	verifyMock(t, mock)
}

func TestRegisterRejectsInvalidNameOrEmail(t *testing.T) {
	svc, mock := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "   ", "ana@example.com", "Abcdef1!"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "Ana", "not-an-email", "Abcdef1!"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	verifyMock(t, mock)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mock := newTestAuthService(t)

	mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE email = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(5, "Ana", "ana@example.com", "x", false))

	if _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "Abcdef1!"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	verifyMock(t, mock)
}

func TestRegisterConcurrentDuplicateCaughtByUniqueIndex(t *testing.T) {
	svc, mock := newTestAuthService(t)

	mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`INSERT INTO "usuarios"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	if _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "Abcdef1!"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	verifyMock(t, mock)
}

func TestCreateAdminSetsFlag(t *testing.T) {
	svc, mock := newTestAuthService(t)

	mock.ExpectQuery(`SELECT \* FROM "usuarios"`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`INSERT INTO "usuarios"`).
		WithArgs("Paula", "paula@example.com", "hashed:Abcdef1!", true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	user, err := svc.CreateAdmin(context.Background(), "Paula", "paula@example.com", "Abcdef1!")
	if err != nil {
		t.Fatalf("CreateAdmin returned error: %v", err)
	}
	if !user.IsAdmin {
		t.Fatalf("expected admin flag set")
	}
	verifyMock(t, mock)
}

func TestAuthenticate(t *testing.T) {
	hash, err := utils.HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	t.Run("unknown email", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns))

		if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "Abcdef1!"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		verifyMock(t, mock)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE email = \$1`).
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(5, "Ana", "ana@example.com", hash, false))

		if _, err := svc.Authenticate(context.Background(), "ana@example.com", "Wrong1!xx"); !errors.Is(err, ErrWrongPassword) {
			t.Fatalf("expected ErrWrongPassword, got %v", err)
		}
		verifyMock(t, mock)
	})

	t.Run("admin ok", func(t *testing.T) {
		svc, mock := newTestAuthService(t)
		mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE email = \$1`).
			WithArgs("paula@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "Paula", "paula@example.com", hash, true))

		user, err := svc.Authenticate(context.Background(), "PAULA@example.com ", "Abcdef1!")
		if err != nil {
			t.Fatalf("Authenticate returned error: %v", err)
		}
		if user.UserID != 1 || !user.IsAdmin {
			t.Fatalf("unexpected user: %+v", user)
		}
		verifyMock(t, mock)
	})
}

func TestPromote(t *testing.T) {
	svc, mock := newTestAuthService(t)

	mock.ExpectExec(`UPDATE "usuarios" SET "is_admin"=\$1 WHERE email = \$2`).
		WithArgs(true, "ana@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "usuarios" SET "is_admin"=\$1 WHERE email = \$2`).
		WithArgs(true, "ghost@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.Promote(context.Background(), "Ana@example.com"); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if err := svc.Promote(context.Background(), "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	verifyMock(t, mock)
}

func TestMigratePlaintextPasswordsSkipsHashedRows(t *testing.T) {
	svc, mock := newTestAuthService(t)
	hash, err := utils.HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	mock.ExpectQuery(`SELECT \* FROM "usuarios"`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "Paula", "paula@example.com", hash, true).
			AddRow(2, "Ana", "ana@example.com", "plain-secret", false).
			AddRow(3, "Luis", "luis@example.com", "another", false))
	mock.ExpectExec(`UPDATE "usuarios" SET "contraseña"=\$1 WHERE id = \$2`).
		WithArgs("hashed:plain-secret", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "usuarios" SET "contraseña"=\$1 WHERE id = \$2`).
		WithArgs("hashed:another", 3).
		WillReturnError(errors.New("lock timeout"))

	result, err := svc.MigratePlaintextPasswords(context.Background())
	if err != nil {
		t.Fatalf("MigratePlaintextPasswords returned error: %v", err)
	}
	if result.Hashed != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	verifyMock(t, mock)
}

func TestRegisterLongPolicyValidPasswordWithRealHash(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAuthService(db)
	password := "Abcdef1!" + strings.Repeat("x", 70)

	ok, _ := utils.ValidatePassword(password)
	if !ok {
		t.Fatalf("expected %d-byte password to satisfy the policy", len(password))
	}

	mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE email = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`INSERT INTO "usuarios"`).
		WithArgs("Ana", "ana@example.com", sqlmock.AnyArg(), false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	user, err := svc.Register(context.Background(), "Ana", "ana@example.com", password)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		t.Fatalf("stored hash does not verify the password")
	}
	verifyMock(t, mock)
}
