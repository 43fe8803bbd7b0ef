// Package csv2sql turns delimited text, Excel and Parquet files into SQL
// scripts that create and populate one table per file.
//
// A conversion reads the header row, normalizes it into unique column names,
// infers a type and a maximum width for every column, skips rows whose field
// count differs from the header and renders a CREATE TABLE statement followed
// by one INSERT statement per remaining row.
//
// # Features
//
//   - CSV, TSV, Excel (XLSX) and Parquet input
//   - Transparent decompression of gzip, bzip2, xz and zstandard input
//   - Typed (date/int4/float8/text) or width-based (NVARCHAR(n)) schemas
//   - Sample-row or full-scan type inference
//   - UTF-8, UTF-16, Windows-1252 and Latin-1 input encodings
//   - Optional verification of generated scripts against in-memory SQLite
//   - Direct loading into SQLite, PostgreSQL or SQL Server
//
// # Basic Usage
//
//	opts := csv2sql.NewOptions()
//	script, err := csv2sql.ConvertFile(ctx, "people.csv", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range script.Warnings {
//	    fmt.Println(w)
//	}
//	err = csv2sql.WriteScript(script, csv2sql.OutputPath("people.csv", opts), opts)
//
// # Output Format
//
// For a file people.csv with the header "id,name,note" the typed schema is
//
//	CREATE TABLE people (
//		id int4 NULL,
//		name text NULL,
//		note text NULL
//	);
//
//	INSERT INTO people VALUES ('1', 'Alice', NULL);
//
// Every value is quoted. Empty fields and the literal NULL become SQL NULL.
//
// # Querying Files
//
// The package registers a database/sql driver named "csv2sql". Opening it
// executes the generated scripts in an in-memory SQLite database:
//
//	db, err := csv2sql.Open("people.csv", "orders.tsv.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Query("SELECT name FROM people WHERE id > 1")
//
// # Table Naming
//
// Table names are derived from file paths:
//   - "users.csv" becomes table "users"
//   - "data.tsv.gz" becomes table "data"
//   - "/path/to/sales.xlsx" becomes table "sales"
package csv2sql
