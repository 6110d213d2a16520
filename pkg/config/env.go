package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv            = "STOREFRONT_APP_ENV"
	EnvPort              = "STOREFRONT_APP_PORT"
	EnvCORSOrigin        = "STOREFRONT_CORS_ORIGIN"
	EnvAnalyticsTimezone = "STOREFRONT_ANALYTICS_TIMEZONE"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"
	EnvDBPass = "STOREFRONT_DB_PASSWORD"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret     = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer     = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins    = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvAdminSecret   = "STOREFRONT_ADMIN_CREATION_SECRET"
	EnvGCSBucket     = "STOREFRONT_GCS_BUCKET_NAME"
	EnvOrdersTopic   = "STOREFRONT_PUBSUB_ORDERS_TOPIC"
	EnvLoginIPLimit  = "STOREFRONT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT"
	EnvMaxUploadMB   = "STOREFRONT_MAX_UPLOAD_MB"
	EnvGCPProjectID  = "STOREFRONT_GCP_PROJECT_ID"
	EnvAutoMigrate   = "STOREFRONT_AUTO_MIGRATE"
	EnvLoginWindow   = "STOREFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW"
	EnvGalleryLimit  = "STOREFRONT_MAX_GALLERY_IMAGES"
	EnvGCSPublicBase = "STOREFRONT_GCS_PUBLIC_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
