package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"

	"retro-store/models"
)

// errDupEntry is MySQL's ER_DUP_ENTRY.
const errDupEntry = 1062

const userColumns = "id, username, email, first_name, last_name, password_hash, user_type"

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.UserType)
	return u, err
}

func findUser(ctx context.Context, column, value string) (models.User, error) {
	row := DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user by %s: %w", column, err)
	}
	return u, nil
}

func GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return findUser(ctx, "username", username)
}

func exists(ctx context.Context, query string, args ...any) (bool, error) {
	var n int
	if err := DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateUser registers a shopper account.
func CreateUser(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	taken, err := exists(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", req.Username)
	if err != nil {
		return models.User{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return models.User{}, ErrDuplicateUsername
	}
	taken, err = exists(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", req.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return models.User{}, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		UserType:     models.UserTypeUser,
	}
	result, err := DB.ExecContext(ctx,
		"INSERT INTO users (username, email, first_name, last_name, password_hash, user_type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.UserType, time.Now().UTC(),
	)
	if err != nil {
		// 并发注册时唯一索引兜底
		if dup := duplicateUserError(err); dup != nil {
			return models.User{}, dup
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID = int(id)
	return u, nil
}

// duplicateUserError maps a unique-key violation on users to the matching
// sentinel, or returns nil.
func duplicateUserError(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != errDupEntry {
		return nil
	}
	// MySQL 8 names the key "users.email", 5.7 just "email".
	if strings.Contains(me.Message, "email'") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

// Authenticate resolves identifier as a username, then as an email, and
// checks password against the stored hash.
func Authenticate(ctx context.Context, identifier, password string) (models.User, error) {
	u, err := findUser(ctx, "username", identifier)
	if errors.Is(err, ErrNotFound) && strings.Contains(identifier, "@") {
		u, err = findUser(ctx, "email", identifier)
	}
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// CustomerName is the display label of a user on the dashboard.
func CustomerName(username, firstName, lastName string) string {
	if name := strings.TrimSpace(firstName + " " + lastName); name != "" {
		return name
	}
	return username
}
