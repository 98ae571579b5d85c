package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ceritaku/server/middleware"
	"github.com/ceritaku/server/models"
	"github.com/ceritaku/server/utils"
)

const minPasswordLength = 8

// UserController handles registration, authentication and profile endpoints.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// userPayload shapes the public profile response, with the stored image path
// expanded to a public URL.
func userPayload(user models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"name":     user.Name,
		"username": user.Username,
		"email":    user.Email,
		"image":    utils.PublicURL(user.Image),
		"about":    user.About,
	}
}

func userAuthPayload(user models.User, token string, expiresAt time.Time) gin.H {
	payload := userPayload(user)
	payload["token"] = token
	payload["expires_at"] = expiresAt.Format("2006-01-02 15:04:05")
	return payload
}

// Register creates a local account and issues a bearer token.
func (u *UserController) Register(ctx *gin.Context) {
	var req struct {
		Name            string `form:"name" json:"name"`
		Username        string `form:"username" json:"username"`
		Email           string `form:"email" json:"email"`
		Password        string `form:"password" json:"password"`
		ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	req.Name = utils.SanitizeStrict(strings.TrimSpace(req.Name))
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	errs := map[string]string{}
	if req.Name == "" {
		errs["name"] = "The name field is required."
	} else if len(req.Name) > 255 {
		errs["name"] = "The name may not be greater than 255 characters."
	}
	if req.Username == "" {
		errs["username"] = "The username field is required."
	} else if len(req.Username) > 64 {
		errs["username"] = "The username may not be greater than 64 characters."
	}
	if req.Email == "" {
		errs["email"] = "The email field is required."
	} else if !strings.Contains(req.Email, "@") {
		errs["email"] = "The email must be a valid email address."
	}
	if len(req.Password) < minPasswordLength {
		errs["password"] = "The password must be at least 8 characters."
	}
	if req.ConfirmPassword != req.Password {
		errs["confirm_password"] = "The confirm password and password must match."
	}

	if _, ok := errs["username"]; !ok {
		var count int64
		if err := u.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to check username")
			return
		}
		if count > 0 {
			errs["username"] = "The username has already been taken."
		}
	}
	if _, ok := errs["email"]; !ok {
		var count int64
		if err := u.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to check email")
			return
		}
		if count > 0 {
			errs["email"] = "The email has already been taken."
		}
	}
	if len(errs) > 0 {
		utils.ValidationError(ctx, errs)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := u.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL())
	token, err := utils.GenerateToken(user.ID, user.Username, utils.TokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.Success(ctx, "Register Success", userAuthPayload(user, token, expiresAt))
}

// Login verifies credentials against username or email and issues a fresh
// token. Earlier tokens stay valid until they expire.
func (u *UserController) Login(ctx *gin.Context) {
	var req struct {
		Identifier string `form:"identifier" json:"identifier"`
		Password   string `form:"password" json:"password"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	errs := map[string]string{}
	if strings.TrimSpace(req.Identifier) == "" {
		errs["identifier"] = "The identifier field is required."
	}
	if req.Password == "" {
		errs["password"] = "The password field is required."
	}
	if len(errs) > 0 {
		utils.ValidationError(ctx, errs)
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	var user models.User
	err := u.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "The provided credentials are incorrect.")
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL())
	token, err := utils.GenerateToken(user.ID, user.Username, utils.TokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.Success(ctx, "Login Success", userAuthPayload(user, token, expiresAt))
}

// Logout revokes the presented bearer token until its natural expiry.
func (u *UserController) Logout(ctx *gin.Context) {
	tokenVal, exists := ctx.Get(middleware.ContextTokenKey)
	token, _ := tokenVal.(string)
	if !exists || token == "" {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL())
	if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)

	utils.Success(ctx, "Logout Success", nil)
}

// UpdateProfile overwrites the mutable profile fields. Image and password are
// managed by their own endpoints.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Name  string `form:"name" json:"name"`
		Email string `form:"email" json:"email"`
		About string `form:"about" json:"about"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	req.Name = utils.SanitizeStrict(strings.TrimSpace(req.Name))
	req.Email = strings.TrimSpace(req.Email)
	req.About = utils.SanitizeStrict(strings.TrimSpace(req.About))

	errs := map[string]string{}
	if req.Name == "" {
		errs["name"] = "The name field is required."
	} else if len(req.Name) > 255 {
		errs["name"] = "The name may not be greater than 255 characters."
	}
	if req.Email == "" {
		errs["email"] = "The email field is required."
	} else if !strings.Contains(req.Email, "@") {
		errs["email"] = "The email must be a valid email address."
	}
	if len([]rune(req.About)) > 1000 {
		errs["about"] = "The about may not be greater than 1000 characters."
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User not found.")
		return
	}

	if _, ok := errs["email"]; !ok && req.Email != user.Email {
		var count int64
		if err := u.db.Model(&models.User{}).Where("email = ? AND id != ?", req.Email, user.ID).Count(&count).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to check email")
			return
		}
		if count > 0 {
			errs["email"] = "The email has already been taken."
		}
	}
	if len(errs) > 0 {
		utils.ValidationError(ctx, errs)
		return
	}

	user.Name = req.Name
	user.Email = req.Email
	user.About = req.About
	if err := u.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update profile")
		return
	}

	utils.Success(ctx, "Profile updated successfully", userPayload(user))
}

// UpdateImage replaces the profile image. The previous stored file is deleted
// before the new one is written.
func (u *UserController) UpdateImage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	fh, err := ctx.FormFile("image")
	if err != nil {
		utils.ValidationError(ctx, map[string]string{"image": "The image field is required."})
		return
	}
	if err := utils.ValidateImageUpload(fh); err != nil {
		utils.ValidationError(ctx, map[string]string{"image": err.Error()})
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User not found.")
		return
	}

	if user.Image != "" {
		utils.DeleteStored(user.Image)
	}

	path, err := utils.SaveUpload(fh, "profile_images")
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to store image")
		return
	}

	if err := u.db.Model(&user).Update("image", path).Error; err != nil {
		utils.DeleteStored(path)
		utils.Error(ctx, http.StatusInternalServerError, "failed to update profile image")
		return
	}
	user.Image = path

	utils.Success(ctx, "Profile image updated successfully", userPayload(user))
}

// ChangePassword rotates the password hash after verifying the old password.
func (u *UserController) ChangePassword(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		OldPassword     string `form:"old_password" json:"old_password"`
		NewPassword     string `form:"new_password" json:"new_password"`
		ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	errs := map[string]string{}
	if req.OldPassword == "" {
		errs["old_password"] = "The old password field is required."
	}
	if len(req.NewPassword) < minPasswordLength {
		errs["new_password"] = "The new password must be at least 8 characters."
	}
	if req.ConfirmPassword != req.NewPassword {
		errs["confirm_password"] = "The confirm password and new password must match."
	}
	if len(errs) > 0 {
		utils.ValidationError(ctx, errs)
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User not found.")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.OldPassword) {
		utils.Error(ctx, http.StatusBadRequest, "The old password is incorrect.")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := u.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update password")
		return
	}

	utils.Success(ctx, "Password updated successfully", nil)
}

// GetUserByID returns a user profile by id.
func (u *UserController) GetUserByID(ctx *gin.Context) {
	var user models.User
	if err := u.db.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, "User not found.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to get user")
		return
	}

	utils.Success(ctx, "User retrieved successfully.", userPayload(user))
}
