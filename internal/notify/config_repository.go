package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"wxhm/internal/models"
	"wxhm/internal/providers"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
)

type ConfigRepositoryInterface interface {
	Save(ctx context.Context, cfg *models.ChannelConfig) (*models.ChannelConfig, error)
	Get(ctx context.Context, id int64) (*models.ChannelConfig, error)
	List(ctx context.Context) ([]models.ChannelConfig, error)
	Delete(ctx context.Context, id int64) error
	// Current returns the most recently updated config, or nil when none exist.
	Current(ctx context.Context) (*models.ChannelConfig, error)
}

type SQLConfigRepository struct {
	db     *sql.DB
	logger providers.Logger
	now    func() time.Time
}

func NewConfigRepository(db *sql.DB, logger providers.Logger) ConfigRepositoryInterface {
	return &SQLConfigRepository{db: db, logger: logger, now: time.Now}
}

const configColumns = `id, name, app_id, secret, recipient, template_id, template_fields, redirect_url, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*models.ChannelConfig, error) {
	var cfg models.ChannelConfig
	var fields string
	var updated int64
	err := row.Scan(&cfg.ID, &cfg.Name, &cfg.AppID, &cfg.Secret, &cfg.Recipient,
		&cfg.TemplateID, &fields, &cfg.RedirectURL, &updated)
	if err != nil {
		return nil, err
	}
	if fields != "" {
		if err := json.Unmarshal([]byte(fields), &cfg.TemplateFields); err != nil {
			return nil, fmt.Errorf("decode template fields of config %d: %w", cfg.ID, err)
		}
	}
	cfg.UpdatedAt = time.Unix(0, updated)
	return &cfg, nil
}

func validateConfig(cfg *models.ChannelConfig) error {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.Recipient = strings.TrimSpace(cfg.Recipient)
	cfg.TemplateID = strings.TrimSpace(cfg.TemplateID)
	cfg.RedirectURL = strings.TrimSpace(cfg.RedirectURL)

	v := validate.Struct(cfg)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", models.ErrValidation, v.Errors.One())
	}
	return ValidateTemplateFields(cfg.TemplateFields)
}

func (r *SQLConfigRepository) Save(ctx context.Context, cfg *models.ChannelConfig) (*models.ChannelConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: empty config", models.ErrValidation)
	}
	saved := *cfg
	if err := validateConfig(&saved); err != nil {
		return nil, err
	}
	if len(saved.TemplateFields) == 0 {
		saved.TemplateFields = append([]string(nil), DefaultTemplateFields...)
	}

	fields, err := json.Marshal(saved.TemplateFields)
	if err != nil {
		return nil, fmt.Errorf("%w: template fields: %v", models.ErrValidation, err)
	}
	now := r.now()
	saved.UpdatedAt = time.Unix(0, now.UnixNano())

	if saved.ID == 0 {
		if strings.TrimSpace(saved.Name) == "" {
			saved.Name = "配置_" + now.Format("20060102150405")
		}
		res, err := r.db.ExecContext(ctx, `INSERT INTO channel_config
			(name, app_id, secret, recipient, template_id, template_fields, redirect_url, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			saved.Name, saved.AppID, saved.Secret, saved.Recipient, saved.TemplateID,
			string(fields), saved.RedirectURL, now.UnixNano())
		if err != nil {
			return nil, fmt.Errorf("%w: insert channel config: %w", models.ErrTransientIO, err)
		}
		if saved.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("%w: insert channel config: %w", models.ErrTransientIO, err)
		}
		r.logger.Infof(providers.TypeNotify, "Saved channel config %d (%s)", saved.ID, saved.Name)
		return &saved, nil
	}

	existing, err := r.Get(ctx, saved.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(saved.Name) == "" {
		saved.Name = existing.Name
	}
	_, err = r.db.ExecContext(ctx, `UPDATE channel_config SET
		name = ?, app_id = ?, secret = ?, recipient = ?, template_id = ?, template_fields = ?, redirect_url = ?, updated_at = ?
		WHERE id = ?`,
		saved.Name, saved.AppID, saved.Secret, saved.Recipient, saved.TemplateID,
		string(fields), saved.RedirectURL, now.UnixNano(), saved.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: update channel config: %w", models.ErrTransientIO, err)
	}
	r.logger.Infof(providers.TypeNotify, "Updated channel config %d (%s)", saved.ID, saved.Name)
	return &saved, nil
}

func (r *SQLConfigRepository) Get(ctx context.Context, id int64) (*models.ChannelConfig, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+configColumns+` FROM channel_config WHERE id = ?`, id)
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("channel config %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: load channel config: %w", models.ErrTransientIO, err)
	}
	return cfg, nil
}

func (r *SQLConfigRepository) List(ctx context.Context) ([]models.ChannelConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+configColumns+` FROM channel_config ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list channel configs: %w", models.ErrTransientIO, err)
	}
	defer rows.Close()

	var out []models.ChannelConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan channel config: %w", models.ErrTransientIO, err)
		}
		out = append(out, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list channel configs: %w", models.ErrTransientIO, err)
	}
	return out, nil
}

func (r *SQLConfigRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM channel_config WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete channel config: %w", models.ErrTransientIO, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete channel config: %w", models.ErrTransientIO, err)
	}
	if n == 0 {
		return fmt.Errorf("channel config %d: %w", id, models.ErrNotFound)
	}
	r.logger.Infof(providers.TypeNotify, "Deleted channel config %d", id)
	return nil
}

func (r *SQLConfigRepository) Current(ctx context.Context) (*models.ChannelConfig, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+configColumns+` FROM channel_config ORDER BY updated_at DESC, id DESC LIMIT 1`)
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: load current channel config: %w", models.ErrTransientIO, err)
	}
	return cfg, nil
}
