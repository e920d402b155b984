package models

// HelpType - справочник категорий помощи. Сеется один раз при старте,
// приложение его не изменяет.
type HelpType struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}
