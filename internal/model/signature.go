package model

import "time"

// SignatureField : куда должна встать подпись.
// Прямоугольник задаётся в координатах от верхнего левого угла страницы.
type SignatureField struct {
	UUID          string    `db:"uuid" json:"uuid"`
	DocumentUUID  string    `db:"document_uuid" json:"document_uuid"`
	AssignedEmail string    `db:"assigned_email" json:"assigned_email"`
	Page          int       `db:"page" json:"page"`
	X             float64   `db:"x" json:"x"`
	Y             float64   `db:"y" json:"y"` // от верха страницы
	Width         float64   `db:"width" json:"width"`
	Height        float64   `db:"height" json:"height"`
	OrderIndex    int       `db:"order_index" json:"order_index"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Signature : собранная подпись. Не больше одной на пару (документ, email) —
// проверяется приложением, а не constraint в БД.
type Signature struct {
	UUID         string    `db:"uuid" json:"uuid"`
	DocumentUUID string    `db:"document_uuid" json:"document_uuid"`
	SignerName   string    `db:"signer_name" json:"signer_name"`
	SignerEmail  string    `db:"signer_email" json:"signer_email"`
	StoragePath  string    `db:"storage_path" json:"storage_path"`
	CreatorUUID  string    `db:"creator_uuid" json:"creator_uuid"`
	IPHash       string    `db:"ip_hash" json:"-"`
	SignedAt     time.Time `db:"signed_at" json:"signed_at"`
	Metadata     string    `db:"metadata" json:"metadata,omitempty"`
}

type ComposeResult struct {
	StoragePath string
	GetURL      string
}
