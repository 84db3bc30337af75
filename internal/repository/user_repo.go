package repository

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Ropeth/songchart/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	UpgradeToArtist(userID uint) error
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) error

	// Balance service. All mutations are single guarded UPDATEs executed in
	// the database, never a read-then-write, so concurrent sessions cannot
	// lose updates.
	CreditFreeLikes(userID uint, n int, cap int) (granted int, err error)
	CreditBoughtLikes(userID uint, n int) error
	GetBalances(userID uint) (free int, bought int, err error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpgradeToArtist(userID uint) error {
	result := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", models.RoleArtist)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreditFreeLikes grants up to n free likes, stopping at the cap. The guard in
// the WHERE clause makes each grant atomic: once the balance reaches the cap
// the UPDATE matches no rows and the remaining grants are dropped, which is a
// no-op by policy, not an error.
func (r *userRepo) CreditFreeLikes(userID uint, n int, cap int) (int, error) {
	granted := 0
	for i := 0; i < n; i++ {
		result := r.db.Model(&models.User{}).
			Where("id = ? AND free_like_balance < ?", userID, cap).
			UpdateColumn("free_like_balance", gorm.Expr("free_like_balance + ?", 1))
		if result.Error != nil {
			return granted, result.Error
		}
		if result.RowsAffected == 0 {
			break
		}
		granted++
	}
	return granted, nil
}

func (r *userRepo) CreditBoughtLikes(userID uint, n int) error {
	result := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("bought_like_balance", gorm.Expr("bought_like_balance + ?", n))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepo) GetBalances(userID uint) (int, int, error) {
	var user models.User
	err := r.db.Select("free_like_balance", "bought_like_balance").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, err
	}
	return user.FreeLikeBalance, user.BoughtLikeBalance, nil
}

func (r *userRepo) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (r *userRepo) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
