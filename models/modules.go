package models

import (
	"path"

	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/config"
	"github.com/ipfs-force-community/venus-ethrpc/models/mysql"
	"github.com/ipfs-force-community/venus-ethrpc/models/repo"
	"github.com/ipfs-force-community/venus-ethrpc/models/sqlite"
)

func SetDataBase(homeDir config.HomeDir, cfg *config.DbConfig) (repo.Repo, error) {
	switch cfg.Type {
	case "sqlite":
		sqliteCfg := cfg.Sqlite
		if !path.IsAbs(sqliteCfg.Path) {
			sqliteCfg.Path = path.Join(string(homeDir), sqliteCfg.Path)
		}
		return sqlite.OpenSqlite(&sqliteCfg)
	case "mysql":
		return mysql.OpenMysql(&cfg.MySql)
	default:
		return nil, xerrors.Errorf("unsupport db type,(%s, %s)", "sqlite", "mysql")
	}
}

func AutoMigrate(repo repo.Repo) error {
	return repo.AutoMigrate()
}
