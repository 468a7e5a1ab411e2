package file

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lamassuiot/ca-material-validator/pkg/depot"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// file is an append-only journal of validation runs, one tab-separated line
// per run. It serves setups without a database.
type file struct {
	journal string
	logger  log.Logger
}

const timeLayout = time.RFC3339

func NewFile(journal string, logger log.Logger) depot.Depot {
	return &file{journal: journal, logger: logger}
}

func (f *file) InsertRun(run *depot.Run) error {
	journal, err := os.OpenFile(f.journal, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		level.Error(f.logger).Log("err", err, "msg", "Could not open run journal for appending")
		return err
	}
	defer journal.Close()

	var entry bytes.Buffer
	entry.WriteString(run.StartedAt.UTC().Format(timeLayout) + "\t")
	entry.WriteString(strconv.FormatBool(run.Valid) + "\t")
	entry.WriteString(strconv.Itoa(run.Errors) + "\t")
	entry.WriteString(strconv.Itoa(run.Warnings) + "\t")
	entry.WriteString(run.Subject + "\n")
	if _, err := journal.Write(entry.Bytes()); err != nil {
		level.Error(f.logger).Log("err", err, "msg", "Could not append run to journal")
		return err
	}
	level.Info(f.logger).Log("msg", "Validation run appended to journal", "subject", run.Subject)
	return nil
}

func (f *file) GetRuns(limit int) ([]depot.Run, error) {
	journal, err := os.Open(f.journal)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		level.Error(f.logger).Log("err", err, "msg", "Could not open run journal")
		return nil, err
	}
	defer journal.Close()

	var runs []depot.Run
	scanner := bufio.NewScanner(journal)
	for id := 1; scanner.Scan(); id++ {
		fields := strings.SplitN(scanner.Text(), "\t", 5)
		if len(fields) != 5 {
			continue
		}
		startedAt, err := time.Parse(timeLayout, fields[0])
		if err != nil {
			continue
		}
		valid, _ := strconv.ParseBool(fields[1])
		errs, _ := strconv.Atoi(fields[2])
		warnings, _ := strconv.Atoi(fields[3])
		runs = append(runs, depot.Run{
			Id:        id,
			StartedAt: startedAt,
			Subject:   fields[4],
			Valid:     valid,
			Errors:    errs,
			Warnings:  warnings,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	// newest first, like the relational depot
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
