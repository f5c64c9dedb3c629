package main

import (
	"log"

	"github.com/sqlboost/sqlboost"

	_ "modernc.org/sqlite"
)

func main() {
	conn, err := sqlboost.NewConn(&sqlboost.Config{
		Engine: sqlboost.SQLite,
		Path:   "example.db",
	})
	if err != nil {
		log.Fatalf("NewConn() failed: %v", err)
	}
	defer conn.Close()

	b := sqlboost.NewBuilder(conn)

	if _, err := b.Raw("CREATE TABLE IF NOT EXISTS notes (id INTEGER PRIMARY KEY, body TEXT)"); err != nil {
		log.Fatalf("create table failed: %v", err)
	}

	res, err := b.Query("INSERT INTO notes (body) VALUES (?)").
		Bind("hello").
		Execute()
	if err != nil {
		log.Fatalf("insert failed: %v", err)
	}
	log.Printf("inserted id=%d", res.LastInsertID)

	out, err := b.Query("SELECT id, body FROM notes").AsMap().Fetch()
	if err != nil {
		log.Fatalf("select failed: %v", err)
	}
	for _, m := range out.Maps() {
		log.Printf("note %v: %v", m["id"], m["body"])
	}
}
