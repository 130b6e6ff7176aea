// Command queryexec-demo exercises pkg/queryexec end to end: it loads a
// small text corpus from a SQLite file, builds a pkg/memsegment.Segment
// from it, parses a boolean query from argv, and prints every matching
// document together with the hit positions of the terms that matched.
//
//	queryexec-demo -db corpus.sqlite "quick AND brown NOT fox"
//
// If the documents table is missing or has no rows, a handful of demo
// rows are seeded into it so the command works against a fresh file.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/kittclouds/queryexec/pkg/memsegment"
	"github.com/kittclouds/queryexec/pkg/queryexec"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    doc_id TEXT NOT NULL,
    field  TEXT NOT NULL,
    body   TEXT NOT NULL
);
`

var demoRows = [][3]string{
	{"doc-1", "title", "The quick brown fox jumps over the lazy dog"},
	{"doc-2", "title", "The quick cat sat on the warm mat"},
	{"doc-3", "title", "A slow brown dog sleeps by the quiet fox den"},
	{"doc-4", "title", "Quick thinking saved the sleepy cat from the fox"},
}

func main() {
	dbPath := flag.String("db", "corpus.sqlite", "path to the SQLite corpus database")
	maxPos := flag.Uint("max-pos", 4096, "maximum in-document word position indexed")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: queryexec-demo -db corpus.sqlite \"quick AND brown NOT fox\"")
	}
	queryText := flag.Arg(0)

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}
	if err := seedIfEmpty(db); err != nil {
		log.Fatalf("failed to seed demo corpus: %v", err)
	}

	docs, labels, err := loadCorpus(db)
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}
	if len(docs) == 0 {
		log.Fatalf("no documents found in %s", *dbPath)
	}

	seg := memsegment.BuildSegment(docs, uint32(*maxPos))
	masked := memsegment.NewMaskedSet()

	root, err := parseQuery(queryText)
	if err != nil {
		log.Fatalf("failed to parse query %q: %v", queryText, err)
	}

	fmt.Printf("query: %s\n", queryText)

	matchCount := 0
	err = queryexec.Execute(seg, masked, root, queryexec.DefaultOptions(), func(docID uint32, matches []queryexec.MatchedTerm) {
		matchCount++
		fmt.Printf("  %s\n", labels[docID])
		for _, m := range matches {
			positions := make([]string, len(m.Hits))
			for i, h := range m.Hits {
				positions[i] = fmt.Sprintf("%d", h.Pos)
			}
			fmt.Printf("    term %d at [%s]\n", m.TermID, strings.Join(positions, ", "))
		}
	})
	if err != nil {
		log.Fatalf("query execution failed: %v", err)
	}

	fmt.Printf("%d matching document(s)\n", matchCount)
}

// seedIfEmpty inserts demoRows when the documents table has no rows,
// so a freshly created database file is immediately queryable.
func seedIfEmpty(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, row := range demoRows {
		if _, err := tx.Exec(`INSERT INTO documents (doc_id, field, body) VALUES (?, ?, ?)`, row[0], row[1], row[2]); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// loadCorpus reads every (doc_id, field, body) row, concatenates each
// document's fields into one text blob, and assigns dense uint32
// docIDs in doc_id's lexical order (pkg/queryexec works over uint32
// document IDs; the original TEXT doc_id is kept in labels for
// display).
func loadCorpus(db *sql.DB) (docs map[uint32]string, labels map[uint32]string, err error) {
	rows, err := db.Query(`SELECT doc_id, field, body FROM documents ORDER BY doc_id`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bodies := make(map[string]*strings.Builder)
	var order []string
	seen := make(map[string]bool)

	for rows.Next() {
		var docID, field, body string
		if err := rows.Scan(&docID, &field, &body); err != nil {
			return nil, nil, err
		}
		if !seen[docID] {
			seen[docID] = true
			order = append(order, docID)
			bodies[docID] = &strings.Builder{}
		}
		if bodies[docID].Len() > 0 {
			bodies[docID].WriteByte(' ')
		}
		bodies[docID].WriteString(body)
		_ = field // field names are not modeled as separate queryexec fields in this demo
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Strings(order)

	docs = make(map[uint32]string, len(order))
	labels = make(map[uint32]string, len(order))
	for i, docID := range order {
		id := uint32(i + 1) // demo docIDs are 1-based
		docs[id] = bodies[docID].String()
		labels[id] = docID
	}
	return docs, labels, nil
}
