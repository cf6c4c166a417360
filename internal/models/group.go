package models

// Grupo is a named role used for authorization.
type Grupo struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Nome      string `gorm:"type:text;not null;uniqueIndex"` // Unique role name.
	Descricao string `gorm:"type:text"`                      // Optional description.

	Usuarios []User `gorm:"foreignKey:GrupoID"` // Member accounts.
}
