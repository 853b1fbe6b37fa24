package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	MetaAppID            string
	MetaAppSecret        string
	FacebookRedirectURI  string
	InstagramRedirectURI string
	LinkedinClientID     string
	LinkedinClientSecret string
	LinkedinRedirectURI  string
	PostgresURI          string
	RedisURI             string
	FrontendURL          string
	R2                   R2
	SecretKey            string
	CookieName           string
}

func LoadConfig() *Config {
	return &Config{
		MetaAppID:            getEnv("META_APP_ID", ""),
		MetaAppSecret:        getEnv("META_APP_SECRET", ""),
		FacebookRedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		InstagramRedirectURI: getEnv("INSTAGRAM_REDIRECT_URI", ""),
		LinkedinClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
		LinkedinClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
		LinkedinRedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", ""),
		PostgresURI:          getEnv("POSTGRES_URI", ""),
		RedisURI:             getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "crosspost_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
