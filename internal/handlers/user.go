package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitchfade/boutique-backend/internal/platform/apierr"
	"github.com/stitchfade/boutique-backend/internal/requestdata"
	"github.com/stitchfade/boutique-backend/internal/services"
)

type UserHandler struct {
	userService  services.UserService
	photoService services.PhotoService
}

func NewUserHandler(userService services.UserService, photoService services.PhotoService) *UserHandler {
	return &UserHandler{userService: userService, photoService: photoService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"me": me})
}

func (uh *UserHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailure, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailure, err)
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailure, err)
		return
	}

	photoURL, err := uh.photoService.SaveUserPhoto(c.Request.Context(), requestdata.UserID(c.Request.Context()), raw)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"photo_url": photoURL})
}
