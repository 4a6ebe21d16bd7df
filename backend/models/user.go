package models

import "gorm.io/gorm"

const (
	RoleUser    = "user"
	RoleTeacher = "teacher"
)

type User struct {
	gorm.Model
	Username     string
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:user"`
}

const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
	MediaFile  = "file"
)

// Media is a reference into the blob store. File is the stored object key.
type Media struct {
	gorm.Model
	Type string `gorm:"size:50;not null"`
	File string `gorm:"not null"`
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Media{},
		&Category{},
		&Subject{},
		&Step{},
		&StepFile{},
		&StepTest{},
		&TestQuestion{},
		&TestAnswer{},
		&UserSubject{},
		&UserStep{},
		&UserTotalTestResult{},
		&UserTestResult{},
	}
}
