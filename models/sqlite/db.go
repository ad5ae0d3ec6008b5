package sqlite

import (
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ipfs-force-community/venus-ethrpc/config"
	"github.com/ipfs-force-community/venus-ethrpc/models/repo"
)

type SqlLiteRepo struct {
	*gorm.DB
}

func (d SqlLiteRepo) RequestRepo() repo.RequestRepo {
	return newRequestRepo(d.GetDb())
}

func (d SqlLiteRepo) AutoMigrate() error {
	return d.GetDb().AutoMigrate(&outstandingRequest{})
}

func (d SqlLiteRepo) GetDb() *gorm.DB {
	return d.DB
}

func (d SqlLiteRepo) DbClose() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func OpenSqlite(cfg *config.SqliteConfig) (repo.Repo, error) {
	path, err := homedir.Expand(cfg.Path)
	if err != nil {
		return nil, xerrors.Errorf("expand path error %v", err)
	}

	db, err := gorm.Open(sqlite.Open(path+"?cache=shared&_journal_mode=wal&sync=normal"), &gorm.Config{})
	if err != nil {
		return nil, xerrors.Errorf("fail to connect sqlite: %s %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return &SqlLiteRepo{
		db,
	}, nil
}
