package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the full option surface of a sync run. Values are layered:
// defaults, then the optional config file, then PHOTOSYNC_* environment
// variables, then command-line flags.
type Settings struct {
	// folder layout
	RootFolder       string `mapstructure:"root_folder"`
	DBPath           string `mapstructure:"db_path"`
	PhotosPath       string `mapstructure:"photos_path"`
	AlbumsPath       string `mapstructure:"albums_path"`
	SharedAlbumsPath string `mapstructure:"shared_albums_path"`

	// album selection
	Album        string `mapstructure:"album"`
	AlbumRegex   string `mapstructure:"album_regex"`
	SharedAlbums bool   `mapstructure:"shared_albums"`
	AlbumIndex   bool   `mapstructure:"album_index"`

	// indexing behaviour
	FavouritesOnly bool `mapstructure:"favourites_only"`
	IncludeVideo   bool `mapstructure:"include_video"`
	Flush          bool `mapstructure:"flush"`
	Progress       bool `mapstructure:"progress"`

	// album folder naming
	UseStartDate  bool   `mapstructure:"use_start_date"`
	UseFlatPath   bool   `mapstructure:"use_flat_path"`
	OmitAlbumDate bool   `mapstructure:"omit_album_date"`
	MonthFormat   string `mapstructure:"month_format"`
	PathFormat    string `mapstructure:"path_format"`

	// link reconciliation
	AlbumInvert        bool `mapstructure:"album_invert"`
	UseHardlinks       bool `mapstructure:"use_hardlinks"`
	NoAlbumSorting     bool `mapstructure:"no_album_sorting"`
	PreserveAlbumLinks bool `mapstructure:"preserve_album_links"`

	// filesystem overrides
	NtfsOverride      bool `mapstructure:"ntfs"`
	MaxFilename       int  `mapstructure:"max_filename"`
	CaseInsensitiveFs bool `mapstructure:"case_insensitive_fs"`

	// compare-folder scan
	CompareFolder string `mapstructure:"compare_folder"`

	// remote API and authorization
	APIBase      string `mapstructure:"api_base"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	LoginPort    int    `mapstructure:"login_port"`
}

// NewViper builds the viper instance with defaults and env wiring. The CLI
// binds its flags into this same instance so precedence works out.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("photos_path", "photos")
	v.SetDefault("albums_path", "albums")
	v.SetDefault("shared_albums_path", "sharedAlbums")
	v.SetDefault("shared_albums", true)
	v.SetDefault("album_index", true)
	v.SetDefault("include_video", true)
	v.SetDefault("login_port", 8080)

	v.SetEnvPrefix("PHOTOSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file into v and unmarshals the merged
// settings. configPath overrides the default search location.
func Load(v *viper.Viper, configPath string) (*Settings, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("photosync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "photosync"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// a missing config file is fine, everything has defaults or flags
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if s.RootFolder == "" {
		return nil, fmt.Errorf("root_folder is required")
	}
	absRoot, err := filepath.Abs(s.RootFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for root folder %q: %w", s.RootFolder, err)
	}
	s.RootFolder = absRoot

	if s.DBPath == "" {
		s.DBPath = s.RootFolder
	}
	return &s, nil
}

// AlbumsRoot resolves the album link root: relative configured paths hang
// off the root folder, absolute ones are used as-is.
func (s *Settings) AlbumsRoot() string {
	return resolveUnder(s.RootFolder, s.AlbumsPath)
}

// SharedAlbumsRoot resolves the shared-album link root.
func (s *Settings) SharedAlbumsRoot() string {
	return resolveUnder(s.RootFolder, s.SharedAlbumsPath)
}

// PhotosRoot resolves the media tree root.
func (s *Settings) PhotosRoot() string {
	return resolveUnder(s.RootFolder, s.PhotosPath)
}

// DatabaseFile returns the index database filename inside DBPath.
func (s *Settings) DatabaseFile() string {
	return filepath.Join(s.DBPath, "photosync.db")
}

// TokenFile returns the OAuth token filename inside DBPath.
func (s *Settings) TokenFile() string {
	return filepath.Join(s.DBPath, ".photosync.token")
}

func resolveUnder(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
