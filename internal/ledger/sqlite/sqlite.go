// Package sqlite persists the conversation ledger so history survives across
// CLI invocations and `dochat export` can run without an active session.
package sqlite

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"dochat/internal/domain"
	"dochat/internal/ledger"
)

var _ domain.Ledger = (*Ledger)(nil)

// Ledger stores turns in a SQLite database. Passages are stored as a JSON
// column carrying id, page, offsets, and score; vectors are not persisted
// (export only needs citations, and the index is rebuilt on every ingest).
type Ledger struct {
	db *sqlx.DB
}

// passage is the persisted shape of one retrieved chunk.
type passage struct {
	ChunkID     string  `json:"chunk_id"`
	PageNumber  int     `json:"page_number"`
	StartOffset int     `json:"start_offset"`
	EndOffset   int     `json:"end_offset"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}

type row struct {
	ID        string    `db:"id"`
	Kind      string    `db:"kind"`
	Query     string    `db:"query"`
	Passages  string    `db:"passages"`
	Answer    string    `db:"answer"`
	CreatedAt time.Time `db:"created_at"`
}

// Open connects to (or creates) the database at path and initializes the schema.
func Open(path string) (*Ledger, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect ledger database: %w", err)
	}
	l := &Ledger{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) initSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		query TEXT NOT NULL,
		passages TEXT NOT NULL,
		answer TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("init ledger schema: %w", err)
	}
	return nil
}

// Append records a completed turn in its own transaction.
func (l *Ledger) Append(turn domain.Turn) error {
	passages := make([]passage, len(turn.Result.Passages))
	for i, p := range turn.Result.Passages {
		passages[i] = passage{
			ChunkID:     p.Chunk.ID,
			PageNumber:  p.Chunk.PageNumber,
			StartOffset: p.Chunk.StartOffset,
			EndOffset:   p.Chunk.EndOffset,
			Text:        p.Chunk.Text,
			Score:       p.Score,
		}
	}
	encoded, err := json.Marshal(passages)
	if err != nil {
		return fmt.Errorf("encode passages: %w", err)
	}

	tx, err := l.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO turns (id, kind, query, passages, answer, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		turn.ID, string(turn.Kind), turn.Query, string(encoded), turn.Answer, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit turn: %w", err)
	}
	return nil
}

// Turns returns all recorded turns in chronological order.
func (l *Ledger) Turns() ([]domain.Turn, error) {
	var rows []row
	if err := l.db.Select(&rows, `SELECT id, kind, query, passages, answer, created_at FROM turns ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("select turns: %w", err)
	}
	turns := make([]domain.Turn, 0, len(rows))
	for _, r := range rows {
		var passages []passage
		if err := json.Unmarshal([]byte(r.Passages), &passages); err != nil {
			return nil, fmt.Errorf("decode passages for turn %s: %w", r.ID, err)
		}
		result := domain.RetrievalResult{Query: r.Query}
		for _, p := range passages {
			result.Passages = append(result.Passages, domain.ScoredChunk{
				Chunk: domain.EmbeddedChunk{Chunk: domain.Chunk{
					ID:          p.ChunkID,
					PageNumber:  p.PageNumber,
					StartOffset: p.StartOffset,
					EndOffset:   p.EndOffset,
					Text:        p.Text,
				}},
				Score: p.Score,
			})
		}
		turns = append(turns, domain.Turn{
			ID:        r.ID,
			Kind:      domain.TurnKind(r.Kind),
			Query:     r.Query,
			Result:    result,
			Answer:    r.Answer,
			Timestamp: r.CreatedAt,
		})
	}
	return turns, nil
}

// Reset deletes all recorded turns.
func (l *Ledger) Reset() error {
	if _, err := l.db.Exec(`DELETE FROM turns`); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	return nil
}

// Export renders the conversation in chronological order.
func (l *Ledger) Export(w io.Writer) error {
	turns, err := l.Turns()
	if err != nil {
		return err
	}
	return ledger.Render(w, turns)
}

// Close releases the database handle.
func (l *Ledger) Close() error { return l.db.Close() }
