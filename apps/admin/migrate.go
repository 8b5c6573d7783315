package main

import (
	"database/sql"

	"github.com/trezcool/goose"

	"github.com/trezcool/academia/fs"
)

// mockable
var gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
	return goose.RunFS(command, db, appfs.FS, "migrations", args...)
}

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	var sqlDB *sql.DB
	if db != nil {
		sqlDB = db.DB
	}
	return gooseRunFunc(args[0], sqlDB, args[1:]...)
}
