package auth

import (
	"errors"
	"time"

	"riddle-game/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	result := r.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *Repository) GetUserByRollNumber(rollNumber string) (*models.User, error) {
	var user models.User
	result := r.db.Where("roll_number = ?", rollNumber).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *Repository) SaveUser(user *models.User) error {
	return r.db.Save(user).Error
}

// EnsureGameState creates the user's game state if it does not exist yet.
// Called at account verification and again defensively at login.
func (r *Repository) EnsureGameState(userID uint) error {
	var state models.GameState
	err := r.db.Where("user_id = ?", userID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = models.GameState{
				UserID:        userID,
				GameStartTime: time.Now(),
			}
			return r.db.Create(&state).Error
		}
		return err
	}
	return nil
}
