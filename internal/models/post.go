package models

import "time"

// Postagem is a blog post authored by a user.
type Postagem struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Titulo        string `gorm:"type:text;not null"` // Post title.
	Conteudo      string `gorm:"type:text;not null"` // HTML body.
	ImagemCapaUrl string `gorm:"type:text"`          // Optional cover image URL.

	AutorID uint64 `gorm:"not null;index"`     // Author user ID.
	Autor   *User  `gorm:"foreignKey:AutorID"` // Author account.

	DataCriacao     time.Time  `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	DataAtualizacao *time.Time // Last update timestamp, nil until first edit.
}
