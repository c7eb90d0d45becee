package auth

import (
	"api/domain"
	"context"
	"regexp"
	"time"
	"unicode/utf8"
)

// argon2id tops out at 2^32-1 bytes of password input, stay far below.
const maxPasswordLength = 256

var usernameFormat = regexp.MustCompile("^[a-z0-9_]{3,20}$")

type service struct {
	userRepo       UserRepo
	passwordHasher PasswordHasher
	tokenManager   TokenManager
}

func NewService(userRepo UserRepo, passwordHasher PasswordHasher, tokenManager TokenManager) *service {
	return &service{userRepo: userRepo, passwordHasher: passwordHasher, tokenManager: tokenManager}
}

func (as *service) Signup(ctx context.Context, username, password string) (string, error) {
	if !usernameFormat.MatchString(username) {
		return "", ErrInvalidUsernameFormat
	}

	if utf8.RuneCountInString(password) < 8 {
		return "", ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	passwordHash, err := as.passwordHasher.Hash(password)
	if err != nil {
		return "", err
	}

	id, err := as.userRepo.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return "", err
	}

	return as.tokenManager.Generate(id, username, time.Now())
}

func (as *service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := as.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	match, err := as.passwordHasher.Compare(user.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !match {
		return "", ErrIncorrectPassword
	}

	return as.tokenManager.Generate(user.Id, user.Username, time.Now())
}

// VerifyToken resolves a bearer token to the identity it carries.
func (as *service) VerifyToken(token string) (domain.TokenPayload, error) {
	return as.tokenManager.Verify(token)
}

// GenerateToken mints a fresh token for an already authenticated user id.
func (as *service) GenerateToken(ctx context.Context, id string) (string, error) {
	user, err := as.userRepo.GetUserById(ctx, id)
	if err != nil {
		return "", err
	}
	return as.tokenManager.Generate(user.Id, user.Username, time.Now())
}
