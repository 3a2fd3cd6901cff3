package controllers

import (
	"time"

	"Backend-Feedback/src/middleware"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/services/users"
	"Backend-Feedback/src/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	users *users.Service
}

func NewUserController(svc *users.Service) *UserController {
	return &UserController{users: svc}
}

func setAuthCookies(c *fiber.Ctx, tokens models.AuthTokens) {
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    tokens.AccessToken,
		Expires:  time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    tokens.RefreshToken,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register godoc
// @Summary      Register a user
// @Description  Register a student, instructor or admin account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body models.RegisterRequest true "Registration details"
// @Success      201  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /users/register [post]
func (h *UserController) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Register(ctx, req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, user, "User registered successfully")
}

// Login godoc
// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body models.LoginRequest true "Credentials"
// @Success      200  {object}  models.ApiResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      429  {object}  models.ErrorResponse
// @Router       /users/login [post]
func (h *UserController) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.users.Login(ctx, req)
	if err != nil {
		return utils.HandleError(c, err)
	}

	c.Set("X-Frame-Options", "DENY")
	c.Set("X-Content-Type-Options", "nosniff")
	setAuthCookies(c, res.AuthTokens)
	return utils.Respond(c, fiber.StatusOK, res, "User logged in successfully")
}

// RefreshToken godoc
// @Summary      Rotate the token pair
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body models.RefreshRequest false "Refresh token (falls back to the refreshToken cookie)"
// @Success      200  {object}  models.ApiResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /users/refresh-token [post]
func (h *UserController) RefreshToken(c *fiber.Ctx) error {
	var req models.RefreshRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return utils.HandleError(c, err)
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies("refreshToken")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	tokens, err := h.users.Refresh(ctx, req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	setAuthCookies(c, *tokens)
	return utils.Respond(c, fiber.StatusOK, tokens, "Access token refreshed")
}

// Logout godoc
// @Summary      Log out
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.ApiResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /users/logout [post]
func (h *UserController) Logout(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	claims, _ := middleware.CurrentClaims(c)
	tokenID, ttl := "", time.Duration(0)
	if claims != nil {
		tokenID, ttl = claims.ID, claims.ExpiresIn()
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.Logout(ctx, identity, tokenID, ttl); err != nil {
		return utils.HandleError(c, err)
	}
	c.ClearCookie("accessToken", "refreshToken")
	return utils.Respond(c, fiber.StatusOK, nil, "User logged out")
}

// CurrentUser godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.ApiResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /users/current-user [get]
func (h *UserController) CurrentUser(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Current(ctx, identity)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, user, "Current user fetched successfully")
}
