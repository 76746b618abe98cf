// Config loading and store construction for the balloonctl CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"balloons/internal/blob"
)

// Config keys. Each may also be set via BALLOONS_<KEY> environment
// variables; command-line flags win over both.
const (
	cfgKeyDriver      = "driver"
	cfgKeyFSRoot      = "fs_root"
	cfgKeySQLitePath  = "sqlite_path"
	cfgKeyPostgresDSN = "postgres_dsn"
	cfgKeyS3Bucket    = "s3_bucket"
	cfgKeyS3Region    = "s3_region"
	cfgKeyS3Endpoint  = "s3_endpoint"
	cfgKeyS3PathStyle = "s3_path_style"
)

// loadConfig reads the config file if present. Resolution order:
// explicit --config path, then .balloons.yaml in the working directory,
// then ~/.balloons/config.yaml. A missing file is not an error.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDriver, string(blob.DriverFilesystem))
	v.SetEnvPrefix("BALLOONS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	v.SetConfigName(".balloons")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".balloons"))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return v, nil
}

// openStore constructs the blob store selected by flags and config.
func openStore(ctx context.Context, cfg *viper.Viper) (blob.Store, error) {
	driver := flagDriver
	if driver == "" {
		driver = cfg.GetString(cfgKeyDriver)
	}
	switch blob.Driver(driver) {
	case blob.DriverFilesystem:
		root := flagRoot
		if root == "" {
			root = cfg.GetString(cfgKeyFSRoot)
		}
		return blob.NewFilesystem(root)
	case blob.DriverSQLite:
		path := flagRoot
		if path == "" {
			path = cfg.GetString(cfgKeySQLitePath)
		}
		return blob.NewSQLite(path)
	case blob.DriverPostgres:
		return blob.NewPostgres(ctx, cfg.GetString(cfgKeyPostgresDSN))
	case blob.DriverS3:
		return blob.NewS3(ctx, blob.S3Config{
			Bucket:    cfg.GetString(cfgKeyS3Bucket),
			Region:    cfg.GetString(cfgKeyS3Region),
			Endpoint:  cfg.GetString(cfgKeyS3Endpoint),
			PathStyle: cfg.GetBool(cfgKeyS3PathStyle),
		})
	default:
		return nil, fmt.Errorf("unknown driver %q (valid: fs, sqlite, postgres, s3)", driver)
	}
}
