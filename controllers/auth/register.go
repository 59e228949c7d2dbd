package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"taskboard/database"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username             string `json:"username" validate:"required,username"`
	Password             string `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	PhoneNumber          string `json:"phone_number" validate:"required,phone"`
	RollNumber           string `json:"roll_number" validate:"required"`
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.RollNumber = strings.TrimSpace(req.RollNumber)

	db := database.DB

	// Ensure username, phone number and roll number are unused
	var existing models.User
	if err := db.Where("username = ? OR phone_number = ? OR roll_number = ?",
		req.Username, req.PhoneNumber, req.RollNumber).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Username, phone number or roll number already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[register] DB error checking uniqueness: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	// Reputation averages start at the 5.0 seed with zero recorded ratings.
	newUser := models.User{
		Username:        req.Username,
		Password:        string(hashed),
		PhoneNumber:     req.PhoneNumber,
		RollNumber:      req.RollNumber,
		GivingRating:    models.RatingSeed,
		AcceptingRating: models.RatingSeed,
	}
	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("[register] DB Create user error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed, please try again"})
		return
	}

	tokenExpiry := 24 * time.Hour
	accessToken, err := utils.GenerateAccessTokenWithExpiry(newUser.ID, tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to issue token"})
		return
	}
	refreshToken, err := utils.GenerateRefreshToken(newUser.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful, welcome!",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": time.Now().Add(tokenExpiry).UTC().Format(time.RFC3339),
			"refresh_token": refreshToken,
			"user": map[string]interface{}{
				"user_id":  newUser.ID,
				"username": newUser.Username,
			},
		},
	})
}
