package models

import "time"

// User represents a registered account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Nome  string `gorm:"type:text;not null"`             // Display name.
	Email string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	Senha string `gorm:"type:text;not null"`             // Hashed password.

	GrupoID uint64 `gorm:"not null;index"`     // Assigned group ID.
	Grupo   *Grupo `gorm:"foreignKey:GrupoID"` // Assigned group.

	Ativo bool `gorm:"not null;default:true"` // Whether the user can sign in.

	Postagens []Postagem `gorm:"foreignKey:AutorID;constraint:OnDelete:CASCADE"` // Authored posts.

	DataCriacao time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
