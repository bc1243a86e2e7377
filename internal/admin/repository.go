package admin

import (
	"log"

	"riddle-game/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateRiddle(riddle *models.Riddle) error {
	err := r.db.Create(riddle).Error
	if err != nil {
		log.Printf("Error creating riddle: %v", err)
		return err
	}
	log.Printf("Created riddle with ID: %d", riddle.ID)
	return nil
}

func (r *Repository) ListRiddles() ([]models.Riddle, error) {
	var riddles []models.Riddle
	err := r.db.Find(&riddles).Error
	if err != nil {
		log.Printf("Error listing riddles: %v", err)
		return nil, err
	}
	return riddles, nil
}

func (r *Repository) RiddleByID(riddleID uint) (*models.Riddle, error) {
	var riddle models.Riddle
	err := r.db.First(&riddle, riddleID).Error
	if err != nil {
		return nil, err
	}
	return &riddle, nil
}

func (r *Repository) FoldersByIDs(ids []uint) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.Where("id IN ?", ids).Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *Repository) CreateFolder(folder *models.Folder) error {
	err := r.db.Create(folder).Error
	if err != nil {
		log.Printf("Error creating folder: %v", err)
		return err
	}
	log.Printf("Created folder with ID: %d", folder.ID)
	return nil
}

func (r *Repository) ListFolders() ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.Preload("Riddle").Preload("Dependencies").
		Order("display_order asc").
		Find(&folders).Error
	if err != nil {
		log.Printf("Error listing folders: %v", err)
		return nil, err
	}
	return folders, nil
}

func (r *Repository) ListNonAdminUsers() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("is_admin = ?", false).Find(&users).Error
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return nil, err
	}
	return users, nil
}

func (r *Repository) UserByID(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) SaveUser(user *models.User) error {
	return r.db.Save(user).Error
}
