package auth

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"riddle-game/internal/email"
	"riddle-game/internal/models"
	"riddle-game/pkg/cache"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrRollNumberExists   = errors.New("user with this roll number already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account is not verified")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrAlreadyVerified    = errors.New("account is already verified")
)

type Service struct {
	repo      *Repository
	cache     *cache.RedisCache
	email     *email.Service
	jwtSecret []byte
}

func NewService(repo *Repository, cache *cache.RedisCache, emailService *email.Service, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		email:     emailService,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates an unverified account and mails an OTP. Email and roll
// number must both be unused.
func (s *Service) Register(username, emailAddr, rollNumber, password string) (*models.User, error) {
	if _, err := s.repo.GetUserByEmail(emailAddr); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.GetUserByRollNumber(rollNumber); err == nil {
		return nil, ErrRollNumberExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:   username,
		Email:      emailAddr,
		RollNumber: rollNumber,
		Password:   string(hashedPassword),
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	if err := s.sendVerificationOTP(emailAddr); err != nil {
		log.Printf("Error sending verification OTP to %s: %v", emailAddr, err)
	}

	return user, nil
}

// VerifyOTP activates the account and creates its game state. Returns
// alreadyVerified=true when the account needed no verification.
func (s *Service) VerifyOTP(emailAddr, code string) (alreadyVerified bool, err error) {
	user, err := s.repo.GetUserByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	if user.IsVerified {
		return true, nil
	}

	stored, err := s.cache.GetOTP(emailAddr)
	if err != nil {
		return false, err
	}
	if stored == "" || stored != code {
		return false, ErrInvalidOTP
	}

	user.IsVerified = true
	if err := s.repo.SaveUser(user); err != nil {
		return false, err
	}

	if err := s.cache.ClearOTP(emailAddr); err != nil {
		log.Printf("Error clearing OTP for %s: %v", emailAddr, err)
	}

	if err := s.repo.EnsureGameState(user.ID); err != nil {
		return false, err
	}

	return false, nil
}

// Login checks credentials and issues a JWT. An unverified account gets a
// fresh OTP mailed and ErrNotVerified back.
func (s *Service) Login(emailAddr, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.sendVerificationOTP(emailAddr); err != nil {
			log.Printf("Error re-sending verification OTP to %s: %v", emailAddr, err)
		}
		return "", user, ErrNotVerified
	}

	if err := s.repo.EnsureGameState(user.ID); err != nil {
		return "", nil, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
		"username": user.Username,
		"email":    user.Email,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, user, nil
}

// ResendOTP mails a fresh code to an unverified account.
func (s *Service) ResendOTP(emailAddr string) error {
	user, err := s.repo.GetUserByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	return s.sendVerificationOTP(emailAddr)
}

func (s *Service) sendVerificationOTP(emailAddr string) error {
	code := generateOTP()
	if err := s.cache.SetOTP(emailAddr, code); err != nil {
		return err
	}
	if err := s.email.SendOTP(context.Background(), emailAddr, code); err != nil {
		log.Printf("Error delivering OTP email to %s: %v", emailAddr, err)
	}
	return nil
}

func generateOTP() string {
	const digits = "0123456789"
	code := make([]byte, 6)
	for i := range code {
		code[i] = digits[rand.Intn(len(digits))]
	}
	return string(code)
}
