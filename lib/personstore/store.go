// Package personstore keeps the records of every scrape run in sqlite
// (or a remote libsql database) so runs can be listed and compared
// later.
package personstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"legiscrape/lib/person"
	"legiscrape/lib/scraper"

	"github.com/google/uuid"
)

//go:embed schema.sql
var Schema string

var ErrNoRun = errors.New("no run found")

type Store struct {
	db *sql.DB
}

// Open opens the configured database and makes sure the schema exists.
func Open(ctx context.Context, config Config) (Store, error) {
	db, err := config.OpenDB()
	if err != nil {
		return Store{}, err
	}
	store, err := NewStore(ctx, db)
	if err != nil {
		return Store{}, errors.Join(err, db.Close())
	}
	return store, nil
}

func NewStore(ctx context.Context, db *sql.DB) (Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create schema: %w", err)
	}
	return Store{db: db}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type RunInfo struct {
	ID            string
	Jurisdiction  string
	StartedAt     time.Time
	FinishedAt    time.Time
	Records       int
	Skipped       int
	FieldWarnings int
	Error         string
}

func (r RunInfo) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Run is a scrape in progress, it is the scraper.Sink records of the run
// are written to.
type Run struct {
	RunInfo
	store Store
	seq   int
}

func (s Store) BeginRun(ctx context.Context, jurisdiction string) (*Run, error) {
	run := &Run{
		RunInfo: RunInfo{
			ID:           uuid.NewString(),
			Jurisdiction: jurisdiction,
			StartedAt:    time.Now().Truncate(time.Second),
		},
		store: s,
	}
	_, err := s.db.ExecContext(
		ctx,
		"insert into run(id, jurisdiction, started_at) values (?, ?, ?)",
		run.ID, run.Jurisdiction, run.StartedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

func (r *Run) Put(ctx context.Context, rec *person.Record) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var personId int64
	err = tx.QueryRowContext(
		ctx,
		`insert into person(run_id, seq, chamber, name, district, party, photo_url)
		values (?, ?, ?, ?, ?, ?, ?)
		returning id`,
		r.ID, r.seq, string(rec.Chamber), rec.Name, rec.District, rec.Party, rec.PhotoURL,
	).Scan(&personId)
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.Name, err)
	}

	for i, c := range rec.ContactDetails {
		_, err = tx.ExecContext(
			ctx,
			"insert into contact_detail(person_id, seq, kind, value, note) values (?, ?, ?, ?, ?)",
			personId, i, string(c.Kind), c.Value, c.Note,
		)
		if err != nil {
			return err
		}
	}
	err = insertUrls(ctx, tx, personId, "source", rec.Sources)
	if err != nil {
		return err
	}
	err = insertUrls(ctx, tx, personId, "link", rec.Links)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return err
	}
	r.seq++
	return nil
}

func insertUrls(ctx context.Context, tx *sql.Tx, personId int64, kind string, urls []string) error {
	for i, u := range urls {
		_, err := tx.ExecContext(
			ctx,
			"insert into person_url(person_id, kind, seq, url) values (?, ?, ?, ?)",
			personId, kind, i, u,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Finish records the outcome of the run, runErr is the fatal error that
// ended it if any.
func (r *Run) Finish(ctx context.Context, summary scraper.Summary, runErr error) error {
	r.FinishedAt = time.Now().Truncate(time.Second)
	r.Records = summary.Records
	r.Skipped = summary.Skipped
	r.FieldWarnings = summary.FieldWarnings
	if runErr != nil {
		r.Error = runErr.Error()
	}

	_, err := r.store.db.ExecContext(
		ctx,
		`update run set finished_at = ?, records = ?, skipped = ?, field_warnings = ?, error = ?
		where id = ?`,
		r.FinishedAt.Unix(), r.Records, r.Skipped, r.FieldWarnings, r.Error, r.ID,
	)
	return err
}

const runColumns = "id, jurisdiction, started_at, finished_at, records, skipped, field_warnings, error"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunInfo, error) {
	var info RunInfo
	var startedAt int64
	var finishedAt sql.NullInt64
	err := row.Scan(
		&info.ID, &info.Jurisdiction, &startedAt, &finishedAt,
		&info.Records, &info.Skipped, &info.FieldWarnings, &info.Error,
	)
	if err != nil {
		return RunInfo{}, err
	}
	info.StartedAt = time.Unix(startedAt, 0)
	if finishedAt.Valid {
		info.FinishedAt = time.Unix(finishedAt.Int64, 0)
	}
	return info, nil
}

// Runs lists every run, newest first.
func (s Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, "select "+runColumns+" from run order by started_at desc, rowid desc")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

func (s Store) Run(ctx context.Context, id string) (RunInfo, error) {
	info, err := scanRun(s.db.QueryRowContext(ctx, "select "+runColumns+" from run where id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%w: %s", ErrNoRun, id)
	}
	return info, err
}

func (s Store) LatestRun(ctx context.Context, jurisdiction string) (RunInfo, error) {
	info, err := scanRun(s.db.QueryRowContext(
		ctx,
		"select "+runColumns+" from run where jurisdiction = ? order by started_at desc, rowid desc limit 1",
		jurisdiction,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%w for %s", ErrNoRun, jurisdiction)
	}
	return info, err
}

// Records returns the records of a run in the order they were put.
func (s Store) Records(ctx context.Context, runId string) ([]*person.Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select id, chamber, name, district, party, photo_url
		from person where run_id = ? order by seq`,
		runId,
	)
	if err != nil {
		return nil, err
	}

	var records []*person.Record
	byId := map[int64]*person.Record{}
	for rows.Next() {
		var id int64
		rec := &person.Record{
			ContactDetails: []person.ContactDetail{},
			Sources:        []string{},
			Links:          []string{},
		}
		var chamber string
		err = rows.Scan(&id, &chamber, &rec.Name, &rec.District, &rec.Party, &rec.PhotoURL)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rec.Chamber = person.Chamber(chamber)
		records = append(records, rec)
		byId[id] = rec
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	err = s.loadContacts(ctx, runId, byId)
	if err != nil {
		return nil, err
	}
	err = s.loadUrls(ctx, runId, byId)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s Store) loadContacts(ctx context.Context, runId string, byId map[int64]*person.Record) error {
	rows, err := s.db.QueryContext(
		ctx,
		`select c.person_id, c.kind, c.value, c.note
		from contact_detail c join person p on p.id = c.person_id
		where p.run_id = ? order by c.person_id, c.seq`,
		runId,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var kind string
		var detail person.ContactDetail
		err = rows.Scan(&id, &kind, &detail.Value, &detail.Note)
		if err != nil {
			return err
		}
		detail.Kind = person.ContactKind(kind)
		if rec, ok := byId[id]; ok {
			rec.ContactDetails = append(rec.ContactDetails, detail)
		}
	}
	return rows.Err()
}

func (s Store) loadUrls(ctx context.Context, runId string, byId map[int64]*person.Record) error {
	rows, err := s.db.QueryContext(
		ctx,
		`select u.person_id, u.kind, u.url
		from person_url u join person p on p.id = u.person_id
		where p.run_id = ? order by u.person_id, u.kind, u.seq`,
		runId,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var kind, u string
		err = rows.Scan(&id, &kind, &u)
		if err != nil {
			return err
		}
		rec, ok := byId[id]
		if !ok {
			continue
		}
		switch kind {
		case "source":
			rec.Sources = append(rec.Sources, u)
		case "link":
			rec.Links = append(rec.Links, u)
		}
	}
	return rows.Err()
}
