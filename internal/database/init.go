package db

import (
	"database/sql"
	"fmt"
)

type Database struct {
	dbName      string
	MysqlClient *sql.DB
}

func NewDatabase(client *sql.DB, dbName string) (*Database, error) {
	return &Database{
		dbName:      dbName,
		MysqlClient: client,
	}, nil
}

const createSubmissionsTable = `
CREATE TABLE IF NOT EXISTS submissions (
	id INT AUTO_INCREMENT PRIMARY KEY,
	signature VARCHAR(128) NOT NULL,
	market VARCHAR(64) NOT NULL,
	commitment VARCHAR(16) NOT NULL,
	status VARCHAR(16) NOT NULL,
	err_payload TEXT,
	timestamp BIGINT NOT NULL,
	INDEX idx_market (market),
	INDEX idx_signature (signature)
)`

func (d *Database) CreateDatabaseAndTable() error {
	createDatabase := `CREATE DATABASE IF NOT EXISTS ` + d.dbName

	if _, err := d.MysqlClient.Exec(createDatabase); err != nil {
		return fmt.Errorf("failed to create db %s: %v", d.dbName, err)
	}

	useDatabase := `USE ` + d.dbName

	if _, err := d.MysqlClient.Exec(useDatabase); err != nil {
		return fmt.Errorf("failed to use db %s: %v", d.dbName, err)
	}

	if _, err := d.MysqlClient.Exec(createSubmissionsTable); err != nil {
		return fmt.Errorf("failed to create submissions table: %v", err)
	}

	return nil
}
