package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. Credentials come from
// FIREBASE_CREDENTIALS_BASE64, then GOOGLE_APPLICATION_CREDENTIALS, then the
// ambient application default credentials.
func InitFirebase(ctx context.Context, cfg *Config, logger *zap.Logger) (*firebase.App, error) {
	var opts []option.ClientOption

	switch {
	case cfg.FirebaseCredentialsBase64 != "":
		logger.Info("using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
	case cfg.FirebaseCredentialsFile != "":
		if _, err := os.Stat(cfg.FirebaseCredentialsFile); err != nil {
			return nil, fmt.Errorf("firebase service account file: %w", err)
		}
		logger.Info("using Firebase credentials file", zap.String("path", cfg.FirebaseCredentialsFile))
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	default:
		logger.Info("using application default credentials for Firebase")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
