package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/arz/kvstore"
	"github.com/cppla/arz/models"
	"github.com/cppla/arz/utils"
)

const accountKeyPrefix = "account:"

// AuthController handles account registration and login. Accounts are keyed by lower-cased email.
type AuthController struct {
	kv    kvstore.Store
	guard *utils.RegisterGuard
	now   func() time.Time
}

// NewAuthController creates an AuthController. guard may be nil.
func NewAuthController(kv kvstore.Store, guard *utils.RegisterGuard) *AuthController {
	return &AuthController{kv: kv, guard: guard, now: time.Now}
}

func accountKey(email string) string {
	return accountKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with a bcrypt hashed password and returns the public user.
func (a *AuthController) Register(ctx *gin.Context) {
	var req models.UserDraft
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	req.Username = utils.SanitizeText(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username, email and password are required")
		return
	}
	if req.Username == models.GuestUsername {
		utils.Error(ctx, http.StatusBadRequest, 40003, "username is reserved")
		return
	}

	ip := ctx.ClientIP()
	if !a.guard.CooldownTry(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many attempts, please retry later")
		return
	}
	if !a.guard.DailyLimitCheck(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42921, "daily registration limit reached")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}
	now := a.now().UTC()
	acct := models.Account{
		User: models.User{
			Username:   req.Username,
			Email:      req.Email,
			ProfilePic: req.ProfilePic,
		},
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b, err := json.Marshal(acct)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	c, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()
	created, err := a.kv.SetIfAbsent(c, accountKey(req.Email), string(b))
	if err != nil {
		utils.Sugar.Errorf("register: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}
	if !created {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	}
	a.guard.DailyIncrement(ip)
	utils.Sugar.Infow("account registered", "username", acct.User.Username, "ip", ip)

	ctx.JSON(http.StatusOK, gin.H{"user": acct.Public()})
}

// Login verifies credentials and returns the public user.
func (a *AuthController) Login(ctx *gin.Context) {
	var req models.Credentials
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "email and password are required")
		return
	}

	c, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()
	raw, ok, err := a.kv.Get(c, accountKey(req.Email))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to load account")
		return
	}
	var acct models.Account
	if ok {
		if err := json.Unmarshal([]byte(raw), &acct); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to load account")
			return
		}
	}
	if !utils.CheckPassword(acct.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": acct.Public()})
}
