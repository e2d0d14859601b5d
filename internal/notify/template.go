package notify

import (
	"fmt"
	"regexp"
	"strings"
	"wxhm/internal/models"

	json "github.com/goccy/go-json"
)

const TimeLayout = "2006-01-02 15:04:05"

// DefaultTemplateFields is used when a config names no slots.
var DefaultTemplateFields = []string{"group", "action", "origin", "actor", "time"}

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type TemplateValue struct {
	Value string `json:"value"`
}

type TemplateMessage struct {
	ToUser     string                   `json:"touser"`
	TemplateID string                   `json:"template_id"`
	URL        string                   `json:"url,omitempty"`
	Data       map[string]TemplateValue `json:"data"`
}

// eventField resolves a template slot against an event. "server" and "user"
// are the legacy slot names for origin and actor.
func eventField(ev models.NotificationEvent, slot string) (string, bool) {
	switch slot {
	case "group":
		return ev.Group, true
	case "action":
		return ev.Action, true
	case "origin", "server":
		return ev.Origin, true
	case "actor", "user":
		return ev.Actor, true
	case "time":
		return ev.Timestamp.Local().Format(TimeLayout), true
	}
	return "", false
}

// BuildTemplateData fills the named slots from the event. Slots the event
// has no field for are omitted.
func BuildTemplateData(fields []string, ev models.NotificationEvent) map[string]TemplateValue {
	if len(fields) == 0 {
		fields = DefaultTemplateFields
	}
	data := make(map[string]TemplateValue, len(fields))
	for _, slot := range fields {
		if v, ok := eventField(ev, slot); ok {
			data[slot] = TemplateValue{Value: v}
		}
	}
	return data
}

func BuildMessage(cfg *models.ChannelConfig, ev models.NotificationEvent) *TemplateMessage {
	return &TemplateMessage{
		ToUser:     cfg.Recipient,
		TemplateID: cfg.TemplateID,
		URL:        cfg.RedirectURL,
		Data:       BuildTemplateData(cfg.TemplateFields, ev),
	}
}

// ParseTemplateFields accepts a JSON array of slot names or a comma
// separated list.
func ParseTemplateFields(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var fields []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("%w: template fields: %v", models.ErrValidation, err)
		}
	} else {
		for _, f := range strings.Split(raw, ",") {
			fields = append(fields, strings.TrimSpace(f))
		}
	}
	return fields, ValidateTemplateFields(fields)
}

func ValidateTemplateFields(fields []string) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if !slotPattern.MatchString(f) {
			return fmt.Errorf("%w: invalid template slot %q", models.ErrValidation, f)
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%w: duplicate template slot %q", models.ErrValidation, f)
		}
		seen[f] = struct{}{}
	}
	return nil
}
