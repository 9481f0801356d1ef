package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/user"
	userDB "fileshare-api/internal/infrastructure/db/postgres/user"
	"fileshare-api/internal/infrastructure/jwt"
	"fileshare-api/internal/interface/api/rest/dto/user"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/internal/interface/api/rest/validator"
)

type UserController struct {
	userService ports.UserService
	logger      *zap.Logger
}

func NewUserController(
	r *gin.Engine,
	userService ports.UserService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *UserController {
	uc := &UserController{
		userService: userService,
		logger:      logger,
	}

	r.GET(RouteUsers, uc.GetUsersHandler)
	r.GET(RouteUser, uc.GetUserHandler)
	// sign up
	r.POST(RouteUsers, uc.CreateUserHandler)

	account := r.Group("", middleware.AuthMiddleware(jwtService))
	account.PUT(RouteUser, uc.UpdateUserHandler)
	account.DELETE(RouteUser, uc.DeleteUserHandler)

	return uc
}

func (uc *UserController) GetUsersHandler(c *gin.Context) {
	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	users, err := uc.userService.FindUsers(c.Request.Context(), page)
	if err != nil {
		uc.fail(c, "FindUsers()", err, "failed to get users")
		return
	}

	c.JSON(http.StatusOK, user.ResponseData{Data: user.ToResponseUsers(users)})
}

func (uc *UserController) GetUserHandler(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	u, err := uc.userService.FindUserByID(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, "FindUserByID()", err, "failed to get a user")
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u))
}

func (uc *UserController) CreateUserHandler(c *gin.Context) {
	req, uDomain, ok := bindUser(c, true)
	if !ok {
		return
	}

	u, err := uc.userService.CreateUser(c.Request.Context(), uDomain, req.Password)
	if err != nil {
		uc.fail(c, "CreateUser()", err, "failed to create a user")
		return
	}

	c.JSON(http.StatusCreated, user.ToResponseUser(*u))
}

func (uc *UserController) UpdateUserHandler(c *gin.Context) {
	id, ok := accountParam(c)
	if !ok {
		return
	}
	_, uDomain, ok := bindUser(c, false)
	if !ok {
		return
	}
	uDomain.UUID = id

	u, err := uc.userService.UpdateUser(c.Request.Context(), uDomain)
	if err != nil {
		uc.fail(c, "UpdateUser()", err, "failed to update a user")
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u))
}

func (uc *UserController) DeleteUserHandler(c *gin.Context) {
	id, ok := accountParam(c)
	if !ok {
		return
	}

	if err := uc.userService.DeleteUser(c.Request.Context(), id); err != nil {
		uc.fail(c, "DeleteUser()", err, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

// fail maps account errors; anything unexpected is logged and reported as msg.
func (uc *UserController) fail(c *gin.Context, op string, err error, msg string) {
	switch {
	case errors.Is(err, userDB.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": userDB.ErrEmailAlreadyExists.Error()})
	case errors.Is(err, userDB.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		uc.logger.Error(op+" error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func userIDParam(c *gin.Context) (domain.UUID, bool) {
	ok, id := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a valid UUID"})
	}
	return id, ok
}

// accountParam resolves user_id and allows only the account owner or an admin.
func accountParam(c *gin.Context) (domain.UUID, bool) {
	id, ok := userIDParam(c)
	if !ok {
		return id, false
	}
	if c.GetString(middleware.CtxUserRole) == domain.RoleAdmin {
		return id, true
	}
	if caller, ok := middleware.CallerID(c); ok && caller == id {
		return id, true
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	return id, false
}

func bindUser(c *gin.Context, withPassword bool) (user.Request, domain.User, bool) {
	var req user.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return req, domain.User{}, false
	}
	if errs := validator.ValidateUser(req, withPassword); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": errs})
		return req, domain.User{}, false
	}

	u, err := user.ToDomainUser(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return req, domain.User{}, false
	}

	return req, u, true
}
