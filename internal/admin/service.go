package admin

import (
	"errors"

	"riddle-game/internal/models"

	"gorm.io/gorm"
)

var (
	ErrRiddleNotFound     = errors.New("riddle not found for this folder")
	ErrDependencyNotFound = errors.New("one or more dependency folders not found")
	ErrUserNotFound       = errors.New("user not found")
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddRiddle(riddle *models.Riddle) error {
	return s.repo.CreateRiddle(riddle)
}

// ListRiddles returns all riddles including their secret answers. Admin only.
func (s *Service) ListRiddles() ([]models.RiddleDTO, error) {
	riddles, err := s.repo.ListRiddles()
	if err != nil {
		return nil, err
	}

	dtos := make([]models.RiddleDTO, len(riddles))
	for i, r := range riddles {
		dtos[i] = r.ToDTO(true)
	}
	return dtos, nil
}

// AddFolder creates a folder after validating that its entry riddle and
// every dependency folder exist.
func (s *Service) AddFolder(folder *models.Folder, dependencyIDs []uint) error {
	if _, err := s.repo.RiddleByID(folder.RiddleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRiddleNotFound
		}
		return err
	}

	if len(dependencyIDs) > 0 {
		deps, err := s.repo.FoldersByIDs(dependencyIDs)
		if err != nil {
			return err
		}
		if len(deps) != len(dependencyIDs) {
			return ErrDependencyNotFound
		}
		folder.Dependencies = deps
	}

	return s.repo.CreateFolder(folder)
}

func (s *Service) ListFolders() ([]models.Folder, error) {
	return s.repo.ListFolders()
}

func (s *Service) ListUsers() ([]models.User, error) {
	return s.repo.ListNonAdminUsers()
}

// ToggleAdmin flips a user's admin flag and returns the updated user.
func (s *Service) ToggleAdmin(userID uint) (*models.User, error) {
	user, err := s.repo.UserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.IsAdmin = !user.IsAdmin
	if err := s.repo.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}
