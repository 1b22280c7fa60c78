package repository

import (
	"context"
	"database/sql"
	"errors"

	"doctrust-server/config"
	"doctrust-server/internal/model"
	"doctrust-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type LinkRepository struct {
	*config.Database
}

func NewLinkRepository(database *config.Database) *LinkRepository {
	return &LinkRepository{database}
}

// Create : сохраняем новую ссылку доступа
func (r *LinkRepository) Create(ctx context.Context, exec sqlx.ExtContext, link *model.AccessLink) error {
	query := `
		INSERT INTO access_links (uuid, token, document_uuid, scope, expires_at, max_uses, used_count, restricted_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, NOW())
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		link.UUID,
		link.Token,
		link.DocumentUUID,
		link.Scope,
		link.ExpiresAt,
		link.MaxUses,
		link.RestrictedEmail)

	if err != nil {
		return util.LogError("[LinkRepo] не удалось сохранить ссылку", err)
	}
	return nil
}

func (r *LinkRepository) GetByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.AccessLink, error) {
	query := `
		SELECT uuid, token, document_uuid, scope, expires_at, max_uses,
		       used_count, revoked_at, COALESCE(restricted_email, '') AS restricted_email, created_at
		FROM access_links
		WHERE token = $1
	`

	var link model.AccessLink
	err := sqlx.GetContext(ctx, exec, &link, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &link, nil
}

// UpdateUsedCount : записывает заранее вычисленное значение счётчика.
// Это вторая половина read-then-write: никакого used_count = used_count + 1
// и никакого условия по max_uses на стороне БД — два конкурентных резолва
// могут проскочить лимит, это известное ограничение.
func (r *LinkRepository) UpdateUsedCount(ctx context.Context, exec sqlx.ExtContext, linkUUID string, usedCount int) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE access_links SET used_count = $2 WHERE uuid = $1
	`, linkUUID, usedCount)
	if err != nil {
		return util.LogError("[LinkRepo] не удалось обновить счётчик использований", err)
	}
	return nil
}

// Revoke : идемпотентный отзыв — повторный вызов ничего не меняет
func (r *LinkRepository) Revoke(ctx context.Context, exec sqlx.ExtContext, token string) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE access_links SET revoked_at = NOW() WHERE token = $1 AND revoked_at IS NULL
	`, token)
	if err != nil {
		return util.LogError("[LinkRepo] не удалось отозвать ссылку", err)
	}
	return nil
}
