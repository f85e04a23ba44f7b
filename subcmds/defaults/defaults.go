// Copyright (c) 2025 BVK Chaitanya

package defaults

import (
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

func DataDir() string {
	const fallbackValue = "."
	user, err := user.Current()
	if err != nil {
		log.Printf("could not query for current user (using fallback data directory): %v", err)
		return fallbackValue
	}
	if len(user.HomeDir) == 0 {
		log.Printf("could not find home directory; using fallback data directory")
		return fallbackValue
	}

	var defaultValue = filepath.Join(user.HomeDir, ".marketbrowser")
	value := os.Getenv("MARKETBROWSER_DATA_DIR")
	if len(value) == 0 {
		return defaultValue
	}

	if !filepath.IsAbs(value) {
		log.Printf("MARKETBROWSER_DATA_DIR value must be an absolute path (value %s is ignored)", value)
		return defaultValue
	}
	return value
}

// LogDir returns the directory for log files or an empty string when log
// files are not configured.
func LogDir() string {
	value := os.ExpandEnv(os.Getenv("MARKETBROWSER_LOG_DIR"))
	if len(value) == 0 {
		return ""
	}

	if !filepath.IsAbs(value) {
		if strings.ContainsRune(value, os.PathSeparator) {
			log.Printf("MARKETBROWSER_LOG_DIR value must be an absolute path or a directory base name (value %s is ignored)", value)
			return ""
		}
		return filepath.Join(DataDir(), value)
	}
	return value
}
