package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a wizard reading answers from in and prompting on out
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run runs the interactive configuration wizard
func (w *Wizard) Run() (*Config, error) {
	fmt.Fprintln(w.out, "=== groupsnap Configuration Wizard ===")
	fmt.Fprintln(w.out)

	cfg := DefaultConfig()
	validator := NewValidator()

	// Bot Token
	for {
		fmt.Fprint(w.out, "Telegram Bot Token: ")
		token, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if err := validator.ValidateTelegramToken(token); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}

		cfg.BotToken = token
		break
	}

	// Allowed groups
	for {
		fmt.Fprint(w.out, "Allowed group IDs (comma separated, use /groupid in a group to find it): ")
		line, err := w.readLine()
		if err != nil {
			return nil, err
		}

		ids, err := parseGroupIDs(line)
		if err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}

		cfg.AllowedGroupIDs = ids
		break
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Image triggers (empty text to finish):")

	for {
		fmt.Fprint(w.out, "Trigger text: ")
		text, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if text == "" {
			break
		}

		if err := validator.ValidateTriggerText(text); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}

		fmt.Fprint(w.out, "Image URL: ")
		imageURL, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if err := validator.ValidateImageURL(imageURL); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}

		cfg.Triggers = append(cfg.Triggers, Trigger{Text: text, ImageURL: imageURL})
	}

	fmt.Fprintln(w.out)

	// Log Level
	fmt.Fprint(w.out, "Log level (debug/info/warn/error) [info]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Fprintf(w.out, "Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseGroupIDs parses a comma separated list of chat IDs
func parseGroupIDs(line string) ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(line, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid group ID %q", field)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one group ID is required")
	}

	return ids, nil
}
