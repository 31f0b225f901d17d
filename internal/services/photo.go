package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/stitchfade/boutique-backend/internal/platform/apierr"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/repos"
)

// PhotoService stores uploaded profile photos on local disk under the
// configured upload directory and points the user row at the stored file.
type PhotoService interface {
	SaveUserPhoto(ctx context.Context, userID uuid.UUID, raw []byte) (string, error)
}

type photoService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	uploadDir string
	baseURL   string
}

func NewPhotoService(log *logger.Logger, userRepo repos.UserRepo, uploadDir, baseURL string) PhotoService {
	serviceLog := log.With("service", "PhotoService")
	return &photoService{
		log:       serviceLog,
		userRepo:  userRepo,
		uploadDir: uploadDir,
		baseURL:   baseURL,
	}
}

func (ps *photoService) SaveUserPhoto(ctx context.Context, userID uuid.UUID, raw []byte) (string, error) {
	if userID == uuid.Nil {
		return "", apierr.Unauthenticated(fmt.Errorf("no resolved user on request"))
	}
	if len(raw) == 0 {
		return "", apierr.ValidationFailure(fmt.Errorf("empty photo upload"))
	}

	processed, err := processUploadedPhoto(raw, 512)
	if err != nil {
		return "", apierr.ValidationFailure(fmt.Errorf("unusable photo: %w", err))
	}

	if err := os.MkdirAll(ps.uploadDir, 0o755); err != nil {
		return "", apierr.PersistenceFailure(fmt.Errorf("create upload dir: %w", err))
	}
	name := fmt.Sprintf("photo_%s_%d.png", userID.String(), time.Now().UnixNano())
	path := filepath.Join(ps.uploadDir, name)
	if err := os.WriteFile(path, processed.Bytes(), 0o644); err != nil {
		return "", apierr.PersistenceFailure(fmt.Errorf("write photo file: %w", err))
	}

	photoURL := strings.TrimRight(ps.baseURL, "/") + "/" + name
	if err := ps.userRepo.SetPhotoURL(ctx, nil, userID, photoURL); err != nil {
		return "", apierr.PersistenceFailure(fmt.Errorf("update user photo url: %w", err))
	}
	return photoURL, nil
}

func processUploadedPhoto(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	// Resize to NxN
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}
