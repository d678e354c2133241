package Models

import (
	"html"
	"strings"

	"DentaLedger/Utils/Token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username   string `gorm:"size:255;not null;unique" json:"username"`
	Password   string `gorm:"size:255;not null" json:"-"`
	Permission int    `json:"permission"`
	IsFrozen   bool   `json:"is_frozen"`
}

type Doctor struct {
	gorm.Model
	Name      string `json:"name"`
	UserID    uint   `json:"user_id"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
}

func (u *User) SaveUser() (*User, error) {
	err := DB.Create(&u).Error
	if err != nil {
		return &User{}, err
	}
	return u, nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	u.Username = html.EscapeString(strings.TrimSpace(u.Username))
	return nil
}

func VerifyPassword(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func LoginCheck(username string, password string) (uint, string, error) {
	user := User{}

	err := DB.Model(User{}).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return 0, "", err
	}

	err = VerifyPassword(password, user.Password)
	if err != nil {
		return 0, "", err
	}

	token, err := Token.GenerateToken(user.ID)
	if err != nil {
		return 0, "", err
	}

	return user.ID, token, nil
}

func GetUserByID(uid uint) (User, error) {
	var user User

	if err := DB.First(&user, uid).Error; err != nil {
		return user, Errf(ErrNotFound, "user %d not found", uid)
	}

	user.Password = ""
	return user, nil
}

func GetDoctorByID(id uint) (Doctor, error) {
	var doctor Doctor
	if err := DB.First(&doctor, id).Error; err != nil {
		return doctor, Errf(ErrNotFound, "doctor %d not found", id)
	}
	return doctor, nil
}
