package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/infrastructure/jwt"
	"fileshare-api/internal/interface/api/rest/dto/key"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/internal/interface/api/rest/validator"
)

type KeyController struct {
	keyStore ports.KeyStore
	logger   *zap.Logger
}

func NewKeyController(
	r *gin.Engine,
	keyStore ports.KeyStore,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *KeyController {
	kc := &KeyController{
		keyStore: keyStore,
		logger:   logger,
	}

	r.POST(RouteKeys, middleware.AuthMiddleware(jwtService), kc.ProvisionHandler)
	r.GET(RouteUserPublicKey, kc.GetPublicKeyHandler)

	return kc
}

// ProvisionHandler creates the caller's keypair, wrapped under the account password.
func (kc *KeyController) ProvisionHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req key.ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}
	if errs := validator.ValidateKeyPassword(req.Password); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	u, err := kc.keyStore.Provision(c.Request.Context(), callerID, req.Password)
	if err != nil {
		writeError(c, kc.logger, "Provision()", err)
		return
	}

	c.JSON(http.StatusCreated, key.PublicKey{
		UserID:    u.UUID,
		PublicKey: u.PublicKey,
		CreatedAt: u.KeyCreatedAt,
	})
}

func (kc *KeyController) GetPublicKeyHandler(c *gin.Context) {
	ok, userUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	_, pemKey, err := kc.keyStore.LookupPublicKey(c.Request.Context(), userUUID)
	if err != nil {
		writeError(c, kc.logger, "LookupPublicKey()", err)
		return
	}

	c.JSON(http.StatusOK, key.PublicKey{
		UserID:    userUUID,
		PublicKey: pemKey,
	})
}
