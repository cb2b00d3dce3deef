package http

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	DB *pgxpool.Pool
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	CPF       string `json:"cpf"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

type profileResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CPF       string `json:"cpf,omitempty"`
}

func generateToken(userID string) (string, error) {
	secret := []byte(os.Getenv("JWT_SECRET"))

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.Username = strings.TrimSpace(body.Username)
	if body.Username == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "username and password required")
	}
	if body.Password != body.Password2 {
		return fiber.NewError(fiber.StatusBadRequest, "password fields didn't match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	ctx := userContext(c)

	var cpf *string
	if v := strings.TrimSpace(body.CPF); v != "" {
		cpf = &v
	}

	var userID string
	err = h.DB.QueryRow(
		ctx,
		`INSERT INTO users (username, email, first_name, last_name, password_hash, cpf)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id`,
		body.Username, body.Email, body.FirstName, body.LastName, string(hashed), cpf,
	).Scan(&userID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create user")
	}

	token, err := generateToken(userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var (
		userID       string
		passwordHash string
	)

	ctx := userContext(c)
	err := h.DB.QueryRow(
		ctx,
		`SELECT id, password_hash FROM users WHERE username = $1`,
		strings.TrimSpace(body.Username),
	).Scan(&userID, &passwordHash)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(body.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := generateToken(userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.JSON(authResponse{Token: token})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var p profileResponse
	var cpf *string
	err := h.DB.QueryRow(
		userContext(c),
		`SELECT id, username, COALESCE(email, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), cpf
         FROM users WHERE id = $1::uuid`,
		userID,
	).Scan(&p.ID, &p.Username, &p.Email, &p.FirstName, &p.LastName, &cpf)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load profile")
	}
	if cpf != nil {
		p.CPF = *cpf
	}
	return c.JSON(p)
}

type profileUpdateRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	CPF       *string `json:"cpf"`
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body profileUpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	_, err := h.DB.Exec(
		userContext(c),
		`UPDATE users
         SET email = COALESCE($2, email),
             first_name = COALESCE($3, first_name),
             last_name = COALESCE($4, last_name),
             cpf = COALESCE($5, cpf)
         WHERE id = $1::uuid`,
		userID, body.Email, body.FirstName, body.LastName, body.CPF,
	)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update profile")
	}
	return h.Me(c)
}

func currentUserID(c *fiber.Ctx) string {
	val := c.Locals("user_id")
	if val == nil {
		val = c.Locals("userID")
	}
	uid, _ := val.(string)
	return strings.TrimSpace(uid)
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
