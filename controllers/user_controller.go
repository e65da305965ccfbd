package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

type UserController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewUserController(db *gorm.DB, logger *log.Logger, notifier *utils.Notifier) *UserController {
	return &UserController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

// GetUsers lists all users (password hashes are never serialized).
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Order("name ASC").Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}
	return c.JSON(utils.SuccessResponse(users))
}

// CreateUser lets an admin or pm provision an account with a default
// password. A pm may only create members.
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	actor := c.Locals("user").(*models.User)

	var input struct {
		Name  string `json:"name" validate:"required,max=100"`
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role" validate:"omitempty,oneof=admin pm member"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if actor.Role == models.RoleMember {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}
	if actor.Role == models.RolePM && role != models.RoleMember {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User already exists", nil)
	}

	// Default password, to be changed on first login
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", nil)
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(user))
}

// UpdateUser edits another user. Role changes follow the privilege rules:
// members never change roles, pms only change members' roles.
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	actor := c.Locals("user").(*models.User)

	var input struct {
		Name  *string `json:"name" validate:"omitempty,max=100"`
		Email *string `json:"email" validate:"omitempty,email"`
		Role  *string `json:"role" validate:"omitempty,oneof=admin pm member"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var target models.User
	if err := uc.DB.First(&target, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	if input.Role != nil {
		if actor.Role == models.RoleMember {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
		}
		if actor.Role == models.RolePM && target.Role != models.RoleMember {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
		}
		target.Role = *input.Role
	}
	if input.Name != nil {
		target.Name = *input.Name
	}
	if input.Email != nil {
		target.Email = *input.Email
	}

	if err := uc.DB.Save(&target).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update user", err)
	}
	return c.JSON(utils.SuccessResponse(target))
}

// DeleteUser removes an account. Admin only.
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	actor := c.Locals("user").(*models.User)
	if actor.Role != models.RoleAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	var target models.User
	if err := uc.DB.First(&target, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	if err := deleteAccount(uc.DB, &target); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete user", err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// UpdateMe edits the caller's own profile and preferences.
func (uc *UserController) UpdateMe(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name     *string `json:"name" validate:"omitempty,max=100"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Theme    *string `json:"theme" validate:"omitempty,oneof=light dark"`
		Language *string `json:"language" validate:"omitempty,max=10"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Theme != nil {
		user.Theme = *input.Theme
	}
	if input.Language != nil {
		user.Language = *input.Language
	}

	if err := uc.DB.Save(user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update profile", err)
	}

	uc.Notifier.SendOne(user.ID, "Your profile was updated",
		models.NotificationTypeInvitation, models.TabInvitation)

	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user.Summary(),
	})
}

// DeleteMe removes the caller's own account.
func (uc *UserController) DeleteMe(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := deleteAccount(uc.DB, user); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete account", err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}

// deleteAccount tombstones the email before the soft delete so the address
// is free to register again.
func deleteAccount(db *gorm.DB, user *models.User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("email", user.DeletedEmail()).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}
