package repository

import (
	"context"

	"doctrust-server/config"
	"doctrust-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type GrantDocumentRepository struct {
	database *config.Database
}

func NewGrantDocumentRepository(database *config.Database) *GrantDocumentRepository {
	return &GrantDocumentRepository{database: database}
}

// HasAccess : true, если юзер владелец документа или есть в grants
func (r *GrantDocumentRepository) HasAccess(ctx context.Context, exec sqlx.ExtContext, documentUUID, userUUID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM documents AS d
			LEFT JOIN document_grants AS g
			  ON d.uuid = g.document_uuid
			 AND g.target_user_uuid = $2
			WHERE d.uuid = $1
			  AND d.deleted_at IS NULL
			  AND (d.owner_uuid = $2 OR g.target_user_uuid IS NOT NULL)
		)
	`
	var exists bool
	err := sqlx.GetContext(ctx, exec, &exists, query, documentUUID, userUUID)
	if err != nil {
		return false, util.LogError("[GrantRepo] ошибка проверки доступа", err)
	}
	return exists, nil
}

// AddGrant : добавляет пользователя к документу для совместного доступа
func (r *GrantDocumentRepository) AddGrant(ctx context.Context, exec sqlx.ExtContext, documentUUID string, targetUserUUID string) error {
	query := `
		INSERT INTO document_grants (document_uuid, target_user_uuid, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (document_uuid, target_user_uuid) DO NOTHING
	`
	_, err := exec.ExecContext(ctx, query, documentUUID, targetUserUUID)

	if err != nil {
		return util.LogError("[GrantRepo] не удалось предоставить доступ к документу", err)
	}

	return nil
}

func (r *GrantDocumentRepository) CheckOwner(ctx context.Context, exec sqlx.ExtContext, documentUUID, ownerUUID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM documents WHERE uuid=$1 AND owner_uuid=$2 AND deleted_at IS NULL)`
	err := sqlx.GetContext(ctx, exec, &exists, query, documentUUID, ownerUUID)
	if err != nil {
		return false, util.LogError("[GrantRepo] не удалось проверить владельца", err)
	}
	return exists, nil
}

func (r *GrantDocumentRepository) RemoveGrant(ctx context.Context, exec sqlx.ExtContext, documentUUID, userUUID string) error {
	_, err := exec.ExecContext(ctx, `
        DELETE FROM document_grants
        WHERE document_uuid = $1 AND target_user_uuid = $2
    `, documentUUID, userUUID)
	if err != nil {
		return util.LogError("[GrantRepo] не удалось удалить доступ к документу", err)
	}
	return nil
}
