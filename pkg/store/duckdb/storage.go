package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReportsSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		id VARCHAR NOT NULL PRIMARY KEY,
		document_name VARCHAR NOT NULL,
		analyzed_at TIMESTAMP NOT NULL,
		processing_seconds DOUBLE NOT NULL,
		total_flags INTEGER NOT NULL,
		critical_count INTEGER NOT NULL,
		high_count INTEGER NOT NULL,
		medium_count INTEGER NOT NULL,
		low_count INTEGER NOT NULL,
		overall_risk_score DOUBLE NOT NULL,
		rule_flags_count INTEGER NOT NULL,
		llm_flags_count INTEGER NOT NULL,
		dedup_removed INTEGER NOT NULL
	);
`

const FindingsSchema = `
	CREATE TABLE IF NOT EXISTS report_findings (
		id VARCHAR NOT NULL,
		report_id VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		category VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		description VARCHAR,
		location VARCHAR,
		score INTEGER NOT NULL,
		source VARCHAR NOT NULL,
		recommendation VARCHAR,
		PRIMARY KEY (report_id, id)
	);
`

var bootQueries = []string{
	ReportsSchema,
	FindingsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
