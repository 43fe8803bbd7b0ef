// Command csv2sql converts tabular files into SQL scripts.
package main

import (
	"os"

	"github.com/nao1215/csv2sql/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
