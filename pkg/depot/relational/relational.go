package relational

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/lamassuiot/ca-material-validator/pkg/depot"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	_ "github.com/lib/pq"
)

const retryInterval = 5 * time.Second

type relationalDB struct {
	db     *sql.DB
	logger log.Logger
}

func NewDB(driverName string, dataSourceName string, logger log.Logger) (depot.Depot, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	waitForDB(func() error { return checkDBAlive(db) }, time.Sleep, logger)

	return &relationalDB{db: db, logger: logger}, nil
}

func checkDBAlive(db *sql.DB) error {
	sqlStatement := `
	SELECT WHERE 1=0`
	_, err := db.Query(sqlStatement)
	return err
}

// waitForDB retries the liveness probe until it succeeds, backing off
// between attempts so a slow database does not get hammered.
func waitForDB(probe func() error, sleep func(time.Duration), logger log.Logger) {
	for probe() != nil {
		level.Warn(logger).Log("msg", "Trying to connect to validation runs database")
		sleep(retryInterval)
	}
}

func (r *relationalDB) InsertRun(run *depot.Run) error {
	sqlStatement := `
	INSERT INTO validation_runs(started_at, subject, valid, errors, warnings)
	VALUES($1, $2, $3, $4, $5)
	RETURNING id;
	`

	err := r.db.QueryRow(sqlStatement, run.StartedAt, run.Subject, run.Valid, run.Errors, run.Warnings).Scan(&run.Id)
	if err != nil {
		level.Error(r.logger).Log("err", err, "msg", "Could not insert validation run for subject "+run.Subject)
		return err
	}
	level.Info(r.logger).Log("msg", "Validation run "+strconv.Itoa(run.Id)+" inserted in database")
	return nil
}

func (r *relationalDB) GetRuns(limit int) ([]depot.Run, error) {
	sqlStatement := `
	SELECT id, started_at, subject, valid, errors, warnings
	FROM validation_runs
	ORDER BY started_at DESC
	LIMIT $1;
	`
	rows, err := r.db.Query(sqlStatement, limit)
	if err != nil {
		level.Error(r.logger).Log("err", err, "msg", "Could not query validation runs")
		return nil, err
	}
	defer rows.Close()

	var runs []depot.Run
	for rows.Next() {
		var run depot.Run
		if err := rows.Scan(&run.Id, &run.StartedAt, &run.Subject, &run.Valid, &run.Errors, &run.Warnings); err != nil {
			level.Error(r.logger).Log("err", err, "msg", "Could not scan validation run row")
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
