package app

import (
	"time"

	"github.com/stitchfade/boutique-backend/internal/platform/envutil"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	UploadDir       string
	UploadBaseURL   string
	LoginPath       string
	StrictSizes     bool
}

func LoadConfig(log *logger.Logger) Config {
	log.Info("Loading environment variables...")
	return Config{
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", 3600),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 86400),
		UploadDir:       envutil.String("UPLOAD_DIR", "public/uploads"),
		UploadBaseURL:   envutil.String("UPLOAD_BASE_URL", "/uploads"),
		LoginPath:       envutil.String("LOGIN_PATH", "/login"),
		StrictSizes:     envutil.Bool("STRICT_SIZE_VALIDATION", false),
	}
}
