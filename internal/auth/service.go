package auth

import (
	"voxnova-backend/internal/models"
	"voxnova-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for the login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupInput for the signup request body.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	UserType string `json:"user_type"`
}

// SessionUserShape is the object stored in the session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// UserFinder abstracts user lookup by email+password (GORM in production,
// test doubles in handler tests).
type UserFinder interface {
	FindByEmailAndPassword(email, password string) (*models.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByEmailAndPassword(email, password string) (*models.User, error) {
	return LoginUser(g.DB, LoginInput{Email: email, Password: password})
}

// LoginUser finds a user by email and verifies the password.
func LoginUser(db *gorm.DB, input LoginInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u models.User
	if err := db.Where("email = ?", input.Email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// SignupUser validates the input and creates a new account.
func SignupUser(db *gorm.DB, input SignupInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	if !validation.IsValidEmail(input.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}
	if !validation.IsValidName(input.Name) {
		return nil, ErrInvalidName
	}
	if input.UserType != models.UserTypeSeller && input.UserType != models.UserTypeBuyer {
		return nil, ErrInvalidUserType
	}

	var existing models.User
	err := db.Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hash),
		Name:         input.Name,
		UserType:     input.UserType,
	}
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:   userID,
		Name:     str(m["name"]),
		Email:    str(m["email"]),
		UserType: str(m["user_type"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
