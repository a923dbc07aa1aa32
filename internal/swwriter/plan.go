package swwriter

import (
	"fmt"

	"github.com/spf13/viper"
)

// LevelManifest is one level's geometry as declared in a pack-plan YAML
// file; TilesDir points at the directory DirTileSource reads payloads from.
type LevelManifest struct {
	LevelID     uint8   `mapstructure:"level_id"`
	ResolutionM float32 `mapstructure:"resolution_m"`
	TileExtentM float32 `mapstructure:"tile_extent_m"`
	OriginE     float64 `mapstructure:"origin_e"`
	OriginN     float64 `mapstructure:"origin_n"`
	GridCols    uint32  `mapstructure:"grid_cols"`
	GridRows    uint32  `mapstructure:"grid_rows"`
	TilesDir    string  `mapstructure:"tiles_dir"`
}

// Manifest is the top-level pack-plan document: the archive's header
// metadata plus its ordered levels. Adapted from the forest-bd-viewer
// backend's viper.Unmarshal config pattern (internal/config/config.go),
// pointed at a YAML plan file instead of .env/process environment.
type Manifest struct {
	DataType    string          `mapstructure:"data_type"`
	ImageFormat string          `mapstructure:"image_format"`
	CRSEPSG     uint32          `mapstructure:"crs_epsg"`
	TileSizePx  uint16          `mapstructure:"tile_size_px"`
	Levels      []LevelManifest `mapstructure:"levels"`
}

// LoadManifest reads and unmarshals a YAML pack-plan file at path.
func LoadManifest(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	if len(m.Levels) == 0 {
		return nil, fmt.Errorf("plan %s declares no levels", path)
	}
	return &m, nil
}

var dataTypeNames = map[string]uint8{"raster": 1, "terrain": 2, "other": 3}
var imageFormatNames = map[string]uint8{"webp": 1, "png": 2, "jpeg": 3, "avif": 4}

var imageFormatExt = map[uint8]string{1: ".webp", 2: ".png", 3: ".jpeg", 4: ".avif"}

// DataTypeCode resolves a plan's human-readable data_type string to its
// header enum value.
func DataTypeCode(name string) (uint8, error) {
	code, ok := dataTypeNames[name]
	if !ok {
		return 0, fmt.Errorf("swwriter: unknown data_type %q", name)
	}
	return code, nil
}

// ImageFormatCode resolves a plan's human-readable image_format string to
// its header enum value.
func ImageFormatCode(name string) (uint8, error) {
	code, ok := imageFormatNames[name]
	if !ok {
		return 0, fmt.Errorf("swwriter: unknown image_format %q", name)
	}
	return code, nil
}
