// Package onboarding runs the interactive first-time setup.
package onboarding

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gmsas95/arogya-cli/internal/config"
	"github.com/gmsas95/arogya-cli/internal/cron"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = "arogya.yaml"

// Answers holds what the wizard collected.
type Answers struct {
	DataDir    string
	Platform   string
	BaseURL    string
	Timezone   string
	DigestTime string // HH:MM, empty disables the digest
	Telegram   config.TelegramConfig
	Discord    config.DiscordConfig
}

// Wizard handles the interactive setup process
type Wizard struct {
	reader  *bufio.Reader
	out     io.Writer
	logger  *zap.Logger
	answers Answers

	// EnvPath receives channel secrets. Defaults to ~/.config/arogya/.env.
	EnvPath string
	Now     func() time.Time
}

func NewWizard(in io.Reader, out io.Writer, logger *zap.Logger) *Wizard {
	envPath := ".env"
	if home, err := os.UserHomeDir(); err == nil {
		envPath = filepath.Join(home, ".config", "arogya", ".env")
	}
	return &Wizard{
		reader:  bufio.NewReader(in),
		out:     out,
		logger:  logger,
		EnvPath: envPath,
		Now:     time.Now,
	}
}

// Run walks through every step and writes the config. dataDir is the suggested default.
func (w *Wizard) Run(dataDir string) (string, error) {
	fmt.Fprint(w.out, welcomeBanner)

	if err := w.setupStorage(dataDir); err != nil {
		return "", fmt.Errorf("storage setup failed: %w", err)
	}
	if err := w.setupBackend(); err != nil {
		return "", fmt.Errorf("backend setup failed: %w", err)
	}
	if err := w.setupReminders(); err != nil {
		return "", fmt.Errorf("reminder setup failed: %w", err)
	}
	if err := w.setupChannels(); err != nil {
		return "", fmt.Errorf("channel setup failed: %w", err)
	}

	path, err := w.writeConfig()
	if err != nil {
		return "", fmt.Errorf("configuration creation failed: %w", err)
	}
	fmt.Fprintf(w.out, completionMessage, path)
	w.logger.Info("Onboarding complete", zap.String("config", path))
	return path, nil
}

// Answers returns the collected values.
func (w *Wizard) Answers() Answers {
	return w.answers
}

// ask prints label and returns the trimmed reply, or def when the reply is empty.
func (w *Wizard) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(w.out, "%s [default: %s]: ", label, def)
	} else {
		fmt.Fprintf(w.out, "%s: ", label)
	}
	// EOF takes the default, so piped answers may stop early
	line, err := w.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (w *Wizard) confirm(label string, def bool) (bool, error) {
	d := "y/N"
	if def {
		d = "Y/n"
	}
	reply, err := w.ask(label+" ("+d+")", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(reply) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (w *Wizard) setupStorage(dataDir string) error {
	fmt.Fprint(w.out, stepHeader(1, "Storage"))
	dir, err := w.ask("Where should Arogya store its data?", dataDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	w.answers.DataDir = dir
	fmt.Fprintln(w.out, "✓ Data directory ready")
	return nil
}

func (w *Wizard) setupBackend() error {
	fmt.Fprint(w.out, stepHeader(2, "Backend"))
	for {
		reply, err := w.ask("Backend URL, or a platform preset (android, ios, web)", "android")
		if err != nil {
			return err
		}
		if url, ok := config.BaseURLForPlatform(reply); ok {
			w.answers.Platform = strings.ToLower(reply)
			w.answers.BaseURL = url
			break
		}
		if strings.HasPrefix(reply, "http://") || strings.HasPrefix(reply, "https://") {
			w.answers.BaseURL = strings.TrimRight(reply, "/")
			break
		}
		fmt.Fprintf(w.out, "✗ %q is neither a URL nor a known platform\n", reply)
	}
	fmt.Fprintf(w.out, "✓ Backend: %s\n", w.answers.BaseURL)
	return nil
}

func (w *Wizard) setupReminders() error {
	fmt.Fprint(w.out, stepHeader(3, "Reminders"))
	for {
		tz, err := w.ask("Timezone for reminders", "Local")
		if err != nil {
			return err
		}
		if _, err := time.LoadLocation(tz); err != nil && tz != "Local" {
			fmt.Fprintf(w.out, "✗ Unknown timezone %q\n", tz)
			continue
		}
		w.answers.Timezone = tz
		break
	}
	for {
		at, err := w.ask("Daily vaccine digest time (HH:MM, or 'off')", "09:00")
		if err != nil {
			return err
		}
		if strings.EqualFold(at, "off") {
			w.answers.DigestTime = ""
			break
		}
		if _, err := cron.DailySpec(at); err != nil {
			fmt.Fprintf(w.out, "✗ %v\n", err)
			continue
		}
		w.answers.DigestTime = at
		break
	}
	return nil
}

func (w *Wizard) setupChannels() error {
	fmt.Fprint(w.out, stepHeader(4, "Notification Channels"))

	tg, err := w.confirm("Deliver reminders to Telegram?", false)
	if err != nil {
		return err
	}
	if tg {
		token, err := w.ask("Telegram bot token", "")
		if err != nil {
			return err
		}
		chat, err := w.ask("Telegram chat id", "")
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q", chat)
		}
		w.answers.Telegram = config.TelegramConfig{Enabled: token != "", BotToken: token, ChatID: id}
	}

	dc, err := w.confirm("Deliver reminders to Discord?", false)
	if err != nil {
		return err
	}
	if dc {
		token, err := w.ask("Discord bot token", "")
		if err != nil {
			return err
		}
		channel, err := w.ask("Discord channel id", "")
		if err != nil {
			return err
		}
		w.answers.Discord = config.DiscordConfig{Enabled: token != "" && channel != "", Token: token, ChannelID: channel}
	}
	return nil
}

// fileConfig is the subset of arogya.yaml the wizard writes. Secrets go to the env file.
type fileConfig struct {
	Backend struct {
		Platform string `yaml:"platform,omitempty"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"backend"`
	Storage struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"storage"`
	Reminders struct {
		Timezone   string `yaml:"timezone"`
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"reminders"`
	Channels struct {
		Telegram struct {
			Enabled bool  `yaml:"enabled"`
			ChatID  int64 `yaml:"chat_id,omitempty"`
		} `yaml:"telegram"`
		Discord struct {
			Enabled   bool   `yaml:"enabled"`
			ChannelID string `yaml:"channel_id,omitempty"`
		} `yaml:"discord"`
	} `yaml:"channels"`
}

func (w *Wizard) writeConfig() (string, error) {
	a := w.answers
	var fc fileConfig
	fc.Backend.Platform = a.Platform
	fc.Backend.BaseURL = a.BaseURL
	fc.Storage.DataDir = a.DataDir
	fc.Reminders.Timezone = a.Timezone
	if a.DigestTime != "" {
		spec, _ := cron.DailySpec(a.DigestTime)
		fc.Reminders.DigestCron = spec
	}
	fc.Channels.Telegram.Enabled = a.Telegram.Enabled
	fc.Channels.Telegram.ChatID = a.Telegram.ChatID
	fc.Channels.Discord.Enabled = a.Discord.Enabled
	fc.Channels.Discord.ChannelID = a.Discord.ChannelID

	body, err := yaml.Marshal(&fc)
	if err != nil {
		return "", err
	}
	header := fmt.Sprintf("# Arogya Configuration\n# Generated on %s\n\n", w.Now().Format(time.DateOnly))

	path := ConfigPath(a.DataDir)
	if err := os.WriteFile(path, append([]byte(header), body...), 0600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	var env strings.Builder
	if a.Telegram.BotToken != "" {
		fmt.Fprintf(&env, "TELEGRAM_BOT_TOKEN=%s\n", a.Telegram.BotToken)
	}
	if a.Discord.Token != "" {
		fmt.Fprintf(&env, "DISCORD_BOT_TOKEN=%s\n", a.Discord.Token)
	}
	if env.Len() > 0 {
		if err := os.MkdirAll(filepath.Dir(w.EnvPath), 0700); err != nil {
			return "", err
		}
		content := fmt.Sprintf("# Arogya Environment Variables\n# Generated on %s\n\n%s", w.Now().Format(time.DateOnly), env.String())
		if err := os.WriteFile(w.EnvPath, []byte(content), 0600); err != nil {
			return "", fmt.Errorf("failed to write env file: %w", err)
		}
	}
	return path, nil
}

// ConfigPath is where the config file lives in dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFileName)
}

// CheckFirstRun reports whether dataDir has no config file yet.
func CheckFirstRun(dataDir string) bool {
	_, err := os.Stat(ConfigPath(dataDir))
	return os.IsNotExist(err)
}
