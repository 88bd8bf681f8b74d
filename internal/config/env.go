package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadEnvFiles loads .env files from the working directory and the user's config dirs.
// Variables already set in the environment win.
func LoadEnvFiles() error {
	envPaths := []string{
		"./.env",
	}

	if home, err := os.UserHomeDir(); err == nil {
		envPaths = append(envPaths,
			filepath.Join(home, ".arogya", ".env"),
			filepath.Join(home, ".config", "arogya", ".env"),
		)
	}

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			if err := loadEnvFile(path); err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
		}
	}

	return nil
}

func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = strings.Trim(value, `"`)
		} else if strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") {
			value = strings.Trim(value, `'`)
		}

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}

// GetEnvWithFallback returns the first non-empty value among keys.
func GetEnvWithFallback(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func GetEnvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// envAliases lets the Expo-era variable names keep working.
var envAliases = map[string][]string{
	"AROGYA_BACKEND_BASE_URL":            {"EXPO_PUBLIC_BACKEND_URL", "BACKEND_URL"},
	"AROGYA_SESSION_TOKEN":               {"EXPO_PUBLIC_ACCESS_TOKEN"},
	"AROGYA_CHANNELS_TELEGRAM_BOT_TOKEN": {"TELEGRAM_BOT_TOKEN"},
	"AROGYA_CHANNELS_DISCORD_TOKEN":      {"DISCORD_BOT_TOKEN", "DISCORD_TOKEN"},
}

// ResolveEnvWithAliases reads canonicalKey, then its legacy names in order.
func ResolveEnvWithAliases(canonicalKey string) string {
	return GetEnvWithFallback(append([]string{canonicalKey}, envAliases[canonicalKey]...)...)
}
