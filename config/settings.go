package config

import (
	"path/filepath"
	"strings"
)

// Storage mode selects the active backend for persisted documents and assets.
const (
	StorageFile = "file"
	StorageBlob = "blob"
)

// Settings is the typed view of the environment the rest of the app consumes.
type Settings struct {
	StorageMode string

	// Blob-storage collaborator (S3-compatible) credentials and layout.
	BlobBucket   string
	BlobRegion   string
	BlobFolder   string
	CDNBaseURL   string
	TransformURL string

	// Local-file backend paths.
	DataFilePath     string
	HeroSettingsPath string
	UploadDir        string
	TempUploadDir    string

	SiteOrigin      string
	AdminPassword   string
	SessionSecret   string
	SecureCookies   bool
	MaxUploadSizeMB int
}

// NewSettings assembles Settings from an environment snapshot, applying the
// same defaults the deployment scripts assume.
func NewSettings(c map[string]string) Settings {
	mode := strings.ToLower(GetString(c, "PROJECTS_STORAGE", StorageFile))
	if mode != StorageBlob {
		mode = StorageFile
	}

	folder := strings.Trim(GetString(c, "BLOB_UPLOAD_FOLDER", "movil/projects"), "/")

	password := strings.TrimSpace(GetString(c, "ADMIN_PASSWORD", ""))
	secret := strings.TrimSpace(GetString(c, "ADMIN_SESSION_SECRET", password))

	return Settings{
		StorageMode: mode,

		BlobBucket:   GetString(c, "BLOB_BUCKET", ""),
		BlobRegion:   GetString(c, "BLOB_REGION", "us-east-1"),
		BlobFolder:   folder,
		CDNBaseURL:   strings.TrimRight(GetString(c, "CDN_BASE_URL", ""), "/"),
		TransformURL: strings.TrimRight(GetString(c, "TRANSFORM_BASE_URL", ""), "/"),

		DataFilePath:     GetString(c, "DATA_FILE_PATH", "projects.json"),
		HeroSettingsPath: GetString(c, "HERO_SETTINGS_FILE_PATH", "hero-settings.json"),
		UploadDir:        GetString(c, "UPLOAD_DIR", filepath.Join("public", "uploads")),
		TempUploadDir:    GetString(c, "TEMP_UPLOAD_DIR", filepath.Join("/tmp", "movil-uploads")),

		SiteOrigin:    GetString(c, "SITE_ORIGIN", "http://localhost:8080"),
		AdminPassword: password,
		SessionSecret: secret,
		// Behind a TLS-terminating proxy the origin can look plain-http;
		// this forces the Secure flag on the session cookie anyway.
		SecureCookies:   GetBool(c, "SECURE_COOKIES", false),
		MaxUploadSizeMB: GetInt(c, "MAX_UPLOAD_SIZE_MB", 150),
	}
}

// BlobEnabled reports whether the remote backend has everything it needs.
func (s Settings) BlobEnabled() bool {
	return s.BlobBucket != "" && s.BlobRegion != ""
}

// ProjectsDocumentKey is the fixed logical key of the project collection.
func (s Settings) ProjectsDocumentKey() string {
	return s.BlobFolder + "-data/projects.json"
}

// HeroSettingsDocumentKey is the fixed logical key of the hero-video record.
func (s Settings) HeroSettingsDocumentKey() string {
	return s.BlobFolder + "-data/hero-settings.json"
}
