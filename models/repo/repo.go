package repo

import (
	"gorm.io/gorm"
)

type Repo interface {
	GetDb() *gorm.DB
	RequestRepo() RequestRepo
	DbClose() error
	AutoMigrate() error
}
