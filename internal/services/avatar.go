package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/types"
)

// AvatarService renders a default initials avatar for new users who have
// not uploaded a photo yet.
type AvatarService interface {
	CreateUserAvatar(ctx context.Context, user *types.User) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	log       *logger.Logger
	uploadDir string
	baseURL   string
	bgColors  []color.NRGBA
	fontFace  font.Face
}

// NewAvatarService returns (nil, nil) when AVATAR_FONT is unset; signup
// then proceeds without a generated avatar.
func NewAvatarService(log *logger.Logger, uploadDir, baseURL string) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath == "" {
		serviceLog.Info("AVATAR_FONT not set, avatar generation disabled")
		return nil, nil
	}

	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:       serviceLog,
		uploadDir: uploadDir,
		baseURL:   baseURL,
		bgColors: []color.NRGBA{
			{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF},
			{R: 0x3F, G: 0x51, B: 0xB5, A: 0xFF},
			{R: 0xE9, G: 0x1E, B: 0x63, A: 0xFF},
			{R: 0xFF, G: 0x98, B: 0x00, A: 0xFF},
			{R: 0x79, G: 0x55, B: 0x48, A: 0xFF},
			{R: 0x60, G: 0x7D, B: 0x8B, A: 0xFF},
		},
		fontFace: face,
	}, nil
}

func (as *avatarService) CreateUserAvatar(ctx context.Context, user *types.User) error {
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(as.uploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("avatar_%s_%d.png", user.ID.String(), time.Now().UnixNano())
	path := filepath.Join(as.uploadDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write avatar file: %w", err)
	}

	user.PhotoURL = as.baseURL + "/" + name
	return nil
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	const size = 512

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	base := as.pickColor(user.Username)
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := computeInitials(user.Username)

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func (as *avatarService) pickColor(username string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return as.bgColors[int(h.Sum32())%len(as.bgColors)]
}

func computeInitials(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "?"
	}
	parts := strings.FieldsFunc(username, func(r rune) bool {
		return r == ' ' || r == '.' || r == '_' || r == '-'
	})
	if len(parts) >= 2 {
		return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[1]))
	}
	return strings.ToUpper(firstRune(username))
}

// firstRune slices by rune, not byte, so multi-byte names keep a valid
// initial.
func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}

func loadFontFace(path string, points float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	f, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: points})
	return face, nil
}
